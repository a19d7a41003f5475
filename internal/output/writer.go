package output

import (
	"os"

	"golang.org/x/sys/unix"
)

// Writer writes formatted output to stdout.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// Write writes the given bytes to stdout, retrying short writes.
func (w *Writer) Write(data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(w.fd, data)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}
