package logio

import (
	"bytes"
	"sync"
)

// Writer implements an io.Writer around a formatted logging function, like
// testing.T.Logf; each completed line is logged separately.
type Writer struct {
	Logf func(string, ...interface{})

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p, then logs any completed lines.
func (lw *Writer) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	for {
		i := bytes.IndexByte(lw.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		lw.Logf("%s", lw.buf.Next(i))
		lw.buf.Next(1)
	}
	return len(p), nil
}

// Close logs any final partial line.
func (lw *Writer) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.buf.Len() > 0 {
		lw.Logf("%s", lw.buf.Next(lw.buf.Len()))
	}
	return nil
}
