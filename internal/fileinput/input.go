// Package fileinput reads lines through a queue of named input streams.
package fileinput

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jcorbin/memforth/internal/runeio"
)

// Location names a line in an Input stream.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Input implements sequential line reading through a Queue of one or more
// input streams. Streams that implement io.Closer are closed once exhausted.
type Input struct {
	Queue []io.Reader

	// Last is the location of the line most recently returned by ReadLine.
	Last Location

	rr   io.RuneReader
	cur  io.Reader
	scan Location
	buf  bytes.Buffer
}

// ReadLine returns the next line, without its line feed, advancing through the
// Queue as streams are exhausted; it returns io.EOF after the last stream.
// A final unterminated line is returned like any other.
func (in *Input) ReadLine() (string, error) {
	for {
		if in.rr == nil && !in.nextIn() {
			return "", io.EOF
		}
		r, _, err := in.rr.ReadRune()
		switch {
		case err == nil && r != '\n':
			in.buf.WriteRune(r)
		case err == nil:
			return in.line(), nil
		case err == io.EOF:
			partial := in.buf.Len() > 0
			var line string
			if partial {
				line = in.line()
			}
			in.closeIn()
			if partial {
				return line, nil
			}
		default:
			return "", err
		}
	}
}

// Location returns the location of the last line read.
func (in *Input) Location() Location { return in.Last }

func (in *Input) line() string {
	in.scan.Line++
	in.Last = in.scan
	line := in.buf.String()
	in.buf.Reset()
	return line
}

// Close closes the current stream, and any still queued.
func (in *Input) Close() (err error) {
	if cl, ok := in.cur.(io.Closer); ok {
		err = cl.Close()
	}
	in.rr, in.cur = nil, nil
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	return err
}

func (in *Input) closeIn() {
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.rr, in.cur = nil, nil
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.cur = r
	in.rr = runeio.NewReader(r)
	in.scan = Location{Name: nameOf(r)}
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
