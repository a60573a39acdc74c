package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommandsTotal counts executed operators by kind and outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldb_commands_total",
			Help: "Total number of executed commands",
		},
		[]string{"command", "status"},
	)
	// ConnectionsActive tracks currently served client sessions.
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coldb_connections_active",
			Help: "Number of active client connections",
		},
	)
	// RowsInserted counts rows appended across all tables.
	RowsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldb_rows_inserted_total",
			Help: "Total number of rows inserted",
		},
	)
	// BatchQueueDepth tracks pending selects in the batch queue.
	BatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coldb_batch_queue_depth",
			Help: "Number of pending queries in the batch queue",
		},
	)
)

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine; listener errors are returned for logging.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
