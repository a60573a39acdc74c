package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir  string
	LogLevel string

	Store   StoreConfig
	IPC     IPCConfig
	Metrics MetricsConfig
}

// StoreConfig bounds the name registries. A create that would exceed a
// bound fails with a capacity error instead of growing past it.
type StoreConfig struct {
	MaxDatabases int
	MaxTables    int
	MaxColumns   int
}

type IPCConfig struct {
	SocketPath     string
	MaxConnections int // Max concurrent connections (0 = unlimited, used with ants)
}

type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:  "./data",
		LogLevel: "info",
		Store: StoreConfig{
			MaxDatabases: 100000,
			MaxTables:    500000,
			MaxColumns:   2500000,
		},
		IPC: IPCConfig{
			SocketPath:     "/tmp/coldb.sock",
			MaxConnections: 0,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9187",
		},
	}
}

// Load overlays values from an optional .env file and from environment
// variables carrying the given prefix onto target.
// COLDB_IPC_SOCKETPATH becomes ipc.socketpath, and so on.
func Load(prefix string, target interface{}) error {
	v := viper.New()

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// .env is optional; parse problems surface during Unmarshal if they matter
		}
	}

	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, prefixUpper) {
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")

			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}
