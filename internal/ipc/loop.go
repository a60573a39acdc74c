package ipc

import (
	"io"
	"net"

	"github.com/kartikbazzad/coldb/internal/metrics"
	"github.com/kartikbazzad/coldb/internal/session"
)

// handleConnection runs the per-session state machine: await message →
// parse → execute → respond, until a zero-length read, a transport error,
// or an executed shutdown. A transport error is fatal to this connection
// only; the listener and every other session keep running.
func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		conn.Close()
		s.connMu.Lock()
		delete(s.connections, conn)
		s.connMu.Unlock()
		metrics.ConnectionsActive.Dec()
	}()

	sess := session.New()
	metrics.ConnectionsActive.Inc()
	s.logger.Info("session %s connected", sess.ID)

	for {
		_, payload, err := ReadMessage(conn)
		if err != nil {
			if err != io.EOF {
				s.logger.Error("session %s read failed: %v", sess.ID, err)
			} else {
				s.logger.Info("session %s disconnected", sess.ID)
			}
			return
		}

		op := s.parser.Parse(string(payload))
		if op == nil {
			// comment line: no operator, empty OK response
			if err := WriteMessage(conn, StatusOK, nil); err != nil {
				s.logger.Error("session %s write failed: %v", sess.ID, err)
				return
			}
			continue
		}

		resp, ok, done := s.exec.Execute(sess, op)

		status := StatusOK
		if !ok {
			status = StatusError
		}

		if err := WriteMessage(conn, status, []byte(resp)); err != nil {
			s.logger.Error("session %s write failed: %v", sess.ID, err)
			return
		}

		if done {
			s.logger.Info("shutdown requested by session %s", sess.ID)
			s.signalShutdown()
			return
		}
	}
}
