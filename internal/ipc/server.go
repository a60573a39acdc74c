package ipc

import (
	"net"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kartikbazzad/coldb/internal/batch"
	"github.com/kartikbazzad/coldb/internal/command"
	"github.com/kartikbazzad/coldb/internal/config"
	"github.com/kartikbazzad/coldb/internal/executor"
	"github.com/kartikbazzad/coldb/internal/logger"
	"github.com/kartikbazzad/coldb/internal/store"
)

// Server owns the unix-socket listener and runs one session loop per
// connected client. The store and batch queue are injected shared state;
// the parser and executor are constructed here and shared by all sessions.
type Server struct {
	cfg    *config.Config
	logger *logger.Logger
	parser *command.Parser
	exec   *executor.Executor

	listener    net.Listener
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
	connections map[net.Conn]bool
	connMu      sync.Mutex
	connPool    *ants.Pool // Optional: bounds concurrent session handlers (nil = unlimited)

	done     chan struct{}
	doneOnce sync.Once
}

func NewServer(cfg *config.Config, log *logger.Logger, st *store.Store, q *batch.Queue) *Server {
	return &Server{
		cfg:         cfg,
		logger:      log,
		parser:      command.NewParser(st, log),
		exec:        executor.New(st, q, log),
		connections: make(map[net.Conn]bool),
		done:        make(chan struct{}),
	}
}

// Done is closed after a shutdown command has been executed and answered.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if err := os.RemoveAll(s.cfg.IPC.SocketPath); err != nil {
		s.logger.Warn("Failed to remove old socket: %v", err)
	}

	listener, err := net.Listen("unix", s.cfg.IPC.SocketPath)
	if err != nil {
		return err
	}

	s.listener = listener
	s.running = true

	if s.cfg.IPC.MaxConnections > 0 {
		connPool, err := ants.NewPool(s.cfg.IPC.MaxConnections, ants.WithPanicHandler(func(v any) {
			s.logger.Error("session handler panic: %v", v)
		}))
		if err == nil {
			s.connPool = connPool
		}
	}

	s.logger.Info("server listening on %s", s.cfg.IPC.SocketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}

	if s.listener != nil {
		s.listener.Close()
	}
	s.running = false
	s.mu.Unlock()

	// Close all active connections to unblock any waiting reads
	s.connMu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()

	if s.connPool != nil {
		_ = s.connPool.ReleaseTimeout(3 * time.Second)
		s.connPool = nil
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) signalShutdown() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			if !s.running {
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			s.logger.Error("accept error: %v", err)
			continue
		}

		s.connMu.Lock()
		s.connections[conn] = true
		s.connMu.Unlock()

		s.wg.Add(1)
		if s.connPool != nil {
			conn := conn
			if err := s.connPool.Submit(func() {
				defer s.wg.Done()
				s.handleConnection(conn)
			}); err != nil {
				s.wg.Done()
				conn.Close()
				s.connMu.Lock()
				delete(s.connections, conn)
				s.connMu.Unlock()
				s.logger.Error("failed to submit session handler to pool: %v", err)
			}
		} else {
			go func() {
				defer s.wg.Done()
				s.handleConnection(conn)
			}()
		}
	}
}
