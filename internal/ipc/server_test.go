package ipc_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kartikbazzad/coldb/internal/batch"
	"github.com/kartikbazzad/coldb/internal/config"
	"github.com/kartikbazzad/coldb/internal/ipc"
	"github.com/kartikbazzad/coldb/internal/logger"
	"github.com/kartikbazzad/coldb/internal/store"
	"github.com/kartikbazzad/coldb/pkg/client"
)

// newTestServer starts a server on a short-lived socket path. t.TempDir
// can exceed the unix socket path limit, so sockets live under os.MkdirTemp.
func newTestServer(t *testing.T, maxConns int) (*ipc.Server, string) {
	t.Helper()

	sockDir, err := os.MkdirTemp("", "coldb")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(sockDir) })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.IPC.SocketPath = filepath.Join(sockDir, "test.sock")
	cfg.IPC.MaxConnections = maxConns

	log := logger.New(io.Discard, logger.LevelError, "[test]")
	srv := ipc.NewServer(cfg, log, store.New(cfg, log), batch.New())
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Stop() })

	return srv, cfg.IPC.SocketPath
}

func TestServerRoundTrip(t *testing.T) {
	_, sock := newTestServer(t, 0)

	c := client.New(sock)
	defer c.Close()

	resp, ok, err := c.Send(`create(db,"school")`)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || resp != "create database successfully." {
		t.Errorf("create db = %q, ok=%v", resp, ok)
	}

	resp, ok, err = c.Send(`create(tbl,"students",school,2)`)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || resp != "create table successfully." {
		t.Errorf("create tbl = %q, ok=%v", resp, ok)
	}

	resp, ok, err = c.Send(`create(tbl,"broken")`)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("malformed create should be flagged as an error")
	}
	if !strings.Contains(resp, "create table command is error") {
		t.Errorf("malformed create = %q", resp)
	}

	// comment lines get an empty acknowledgement
	resp, ok, err = c.Send("-- setup complete")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || resp != "" {
		t.Errorf("comment = %q, ok=%v", resp, ok)
	}
}

// Well-formed commands that fail during execution are flagged on the wire
// the same way malformed ones are, so clients see one error signal.
func TestServerFlagsExecutionFailure(t *testing.T) {
	_, sock := newTestServer(t, 0)

	c := client.New(sock)
	defer c.Close()

	if _, ok, err := c.Send(`create(db,"school")`); err != nil || !ok {
		t.Fatalf("first create ok=%v, err=%v", ok, err)
	}

	resp, ok, err := c.Send(`create(db,"school")`)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("duplicate create should be flagged as an error")
	}
	if !strings.Contains(resp, "already exists") {
		t.Errorf("duplicate create = %q", resp)
	}
}

func TestServerSharedStoreAcrossConnections(t *testing.T) {
	_, sock := newTestServer(t, 4)

	c1 := client.New(sock)
	defer c1.Close()
	c2 := client.New(sock)
	defer c2.Close()

	if resp, _, err := c1.Send(`create(db,"shared")`); err != nil || resp != "create database successfully." {
		t.Fatalf("c1 create = %q, err=%v", resp, err)
	}

	resp, ok, err := c2.Send(`create(db,"shared")`)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("c2's duplicate create should be flagged as an error")
	}
	if !strings.Contains(resp, "already exists") {
		t.Errorf("c2 should see c1's database, got %q", resp)
	}
}

func TestServerSurvivesDroppedConnection(t *testing.T) {
	_, sock := newTestServer(t, 0)

	c1 := client.New(sock)
	if _, _, err := c1.Send(`create(db,"a")`); err != nil {
		t.Fatal(err)
	}
	c1.Close()

	c2 := client.New(sock)
	defer c2.Close()
	resp, ok, err := c2.Send(`create(db,"b")`)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || resp != "create database successfully." {
		t.Errorf("post-drop create = %q, ok=%v", resp, ok)
	}
}

func TestServerShutdownCommand(t *testing.T) {
	srv, sock := newTestServer(t, 0)

	c := client.New(sock)
	defer c.Close()

	resp, ok, err := c.Send("shutdown")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || resp != "persist all the data and shutdown the server." {
		t.Errorf("shutdown = %q, ok=%v", resp, ok)
	}

	select {
	case <-srv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() not closed after shutdown command")
	}
}
