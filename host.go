package main

import (
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/jcorbin/memforth/internal/fileinput"
)

// promptReader reads interactive lines with editing and history.
type promptReader struct {
	rl  *readline.Instance
	loc fileinput.Location
}

func newPromptReader(historyFile string) (*promptReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &promptReader{rl: rl, loc: fileinput.Location{Name: "<stdin>"}}, nil
}

// ReadLine returns the next line typed; an interrupt on an empty line ends
// input, otherwise it discards the partial line.
func (pr *promptReader) ReadLine() (string, error) {
	for {
		line, err := pr.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return "", io.EOF
			}
			continue
		}
		if err != nil {
			return "", err
		}
		pr.loc.Line++
		return line, nil
	}
}

func (pr *promptReader) Location() fileinput.Location { return pr.loc }

func (pr *promptReader) Close() error { return pr.rl.Close() }

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// clearScreen returns a PAGE callback that clears a terminal.
func clearScreen(f *os.File) func() error {
	return func() error {
		_, err := io.WriteString(f, "\x1b[2J\x1b[H")
		return err
	}
}
