package ipc

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"

	"github.com/kartikbazzad/coldb/internal/errors"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		payload string
	}{
		{"command", StatusOK, `create(db,"school")`},
		{"error response", StatusError, "error command, please try again."},
		{"empty payload", StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, tt.status, []byte(tt.payload)); err != nil {
				t.Fatal(err)
			}

			if buf.Len() != HeaderSize+len(tt.payload) {
				t.Errorf("frame size = %d, want %d", buf.Len(), HeaderSize+len(tt.payload))
			}

			status, payload, err := ReadMessage(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if string(payload) != tt.payload {
				t.Errorf("payload = %q, want %q", payload, tt.payload)
			}
		})
	}
}

func TestReadMessageEOF(t *testing.T) {
	_, _, err := ReadMessage(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestReadMessageTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, StatusOK, []byte("shutdown")); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]

	_, _, err := ReadMessage(bytes.NewReader(truncated))
	if err != io.ErrUnexpectedEOF {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestWriteMessageTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMessage(&buf, StatusOK, make([]byte, MaxFrameSize+1))
	if !stderrors.Is(err, errors.ErrFrameTooLarge) {
		t.Errorf("err = %v, want frame-too-large", err)
	}
}

func TestReadMessageRejectsOversizedHeader(t *testing.T) {
	header := []byte{0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}
	_, _, err := ReadMessage(bytes.NewReader(header))
	if !stderrors.Is(err, errors.ErrFrameTooLarge) {
		t.Errorf("err = %v, want frame-too-large", err)
	}
}
