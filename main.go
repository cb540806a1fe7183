package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jcorbin/memforth/internal/logio"
)

func main() {
	ctx := context.Background()

	var (
		timeout time.Duration
		trace   bool
		dump    bool
		prompt  bool
		history string
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit for each line")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dump, "dump", false, "dump memory after running")
	flag.BoolVar(&prompt, "prompt", true, "prompt with line editing when stdin is a terminal")
	flag.StringVar(&history, "history", "", "prompt history file")
	flag.Parse()

	var log logio.Logger
	log.SetOutput(os.Stderr)

	opts := []VMOption{
		WithOutput(os.Stdout),
		WithFaultLogf(log.Errorf),
	}
	for _, name := range flag.Args() {
		f, err := os.Open(name)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(log.ExitCode())
		}
		opts = append(opts, WithInput(f))
	}
	if prompt && isTerminal(os.Stdin) {
		pr, err := newPromptReader(history)
		if err != nil {
			log.Errorf("unable to prompt: %v", err)
			os.Exit(log.ExitCode())
		}
		opts = append(opts, WithLineReader(pr))
	} else {
		opts = append(opts, WithInput(os.Stdin))
	}
	if isTerminal(os.Stdout) {
		opts = append(opts, WithPage(clearScreen(os.Stdout)))
	}
	if timeout != 0 {
		opts = append(opts, WithLineTimeout(timeout))
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	vm := New(opts...)
	if err := vm.Run(ctx); err != nil {
		log.Errorf("%+v", err)
	}
	if dump {
		vmDumper{vm: vm, out: os.Stderr}.dump()
	}
	if err := vm.Close(); err != nil {
		log.ErrorIf(fmt.Errorf("close failed: %w", err))
	}
	os.Exit(log.ExitCode())
}
