package client

import (
	"errors"
	"net"
	"sync"

	"github.com/kartikbazzad/coldb/internal/ipc"
)

var (
	ErrConnectionFailed = errors.New("failed to connect to server")
)

// Client speaks the framed command protocol: one command line per turn,
// one response string back.
type Client struct {
	socketPath string
	conn       net.Conn
	mu         sync.Mutex
}

func New(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
	}
}

func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return ErrConnectionFailed
	}

	c.conn = conn
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

// Send writes one command and reads its response. The returned bool
// reports whether the server flagged the command as malformed. The error
// is transport-level only.
func (c *Client) Send(cmd string) (string, bool, error) {
	if err := c.Connect(); err != nil {
		return "", false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ipc.WriteMessage(c.conn, ipc.StatusOK, []byte(cmd)); err != nil {
		return "", false, err
	}

	status, payload, err := ipc.ReadMessage(c.conn)
	if err != nil {
		return "", false, err
	}

	return string(payload), status == ipc.StatusOK, nil
}
