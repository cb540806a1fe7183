// Package logio provides leveled logging for the command, and a line-oriented
// io.Writer over testing log functions.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Logger implements a leveled logging facility around an output stream.
// Logging any error causes ExitCode to return non-zero.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	buf      bytes.Buffer
	exitCode int
}

// SetOutput sets the logger's output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.output = out
}

// ExitCode returns a code to pass to os.Exit: 1 if any error was logged, 2 if
// writing any log failed, 0 otherwise.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Leveledf returns a printf-style function that logs messages at the given
// level; its signature matches WithLogf.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// ErrorIf logs any non-nil error through Errorf.
func (log *Logger) ErrorIf(err error) {
	if err != nil {
		log.Errorf("%+v", err)
	}
}

// Errorf is like Printf("ERROR", ...) but also retains state so that
// ExitCode will return non-zero.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.exitCode == 0 {
		log.exitCode = 1
	}
	log.printf("ERROR", mess, args...)
}

// Printf prints a line to the output stream like "level: message...\n".
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.printf(level, mess, args...)
}

func (log *Logger) printf(level, mess string, args ...interface{}) {
	if log.output == nil {
		return
	}
	if level != "" {
		log.buf.WriteString(level)
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	if _, err := log.buf.WriteTo(log.output); err != nil {
		log.buf.Reset()
		log.exitCode = 2
	}
}
