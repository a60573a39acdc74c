package ipc

import (
	"encoding/binary"
	"io"

	"github.com/kartikbazzad/coldb/internal/errors"
)

// Each client turn is one framed message: a fixed-size header declaring
// the payload's exact byte length, then that many payload bytes. The
// server answers with the same shape in two writes, header then text.
const (
	HeaderSize   = 8
	MaxFrameSize = 1 << 20
)

type Status uint32

const (
	StatusOK Status = iota
	StatusError
)

// WriteMessage frames payload onto w: one header write, one payload write.
func WriteMessage(w io.Writer, status Status, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return errors.ErrFrameTooLarge
	}

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:], uint32(status))
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage reads one framed message from r. It returns io.EOF on a
// clean zero-length read before the header completes.
func ReadMessage(r io.Reader) (Status, []byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return StatusError, nil, err
	}

	status := Status(binary.LittleEndian.Uint32(header[0:]))
	length := binary.LittleEndian.Uint32(header[4:])
	if length > MaxFrameSize {
		return StatusError, nil, errors.ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return StatusError, nil, err
	}
	return status, payload, nil
}
