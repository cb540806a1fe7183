package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// gen_vm_expects scans a test builder source file for chainable methods like
//
//	func (vmt vmTestCase) expectStack(values ...int64) vmTestCase
//
// and writes a free function for each one, e.g. expectVMStack, that returns
// the method bound to its arguments; such functions compose with
// vmTestCase.apply.

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	typeName = flag.String("type", "vmTestCase", "builder type to scan for")
	infix    = flag.String("infix", "VM", "inserted between each method's prefix and the rest of its name")
	format   = flag.String("fmt", "goimports", "formatter to pipe output through; empty to disable")
	timeout  = flag.Duration("timeout", 5*time.Second, "overall time limit")

	in  namedReader    = os.Stdin
	out io.WriteCloser = os.Stdout
)

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("failed to open %v: %v", name, err)
		}
		args = args[1:]
		in = f
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		out = f
	}
}

func main() {
	parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ready := make(chan struct{})
	if *format == "" {
		close(ready)
	} else {
		eg.Go(func() error { return pipeFormat(ctx, *format, ready) })
	}

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
		}

		defer func() {
			if cerr := in.Close(); rerr == nil {
				rerr = cerr
			}
			if cerr := out.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		return generate(ctx, in, out)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// pipeFormat interposes the named formatter in front of out, closing ready
// once out has been replaced by the formatter's input.
func pipeFormat(ctx context.Context, name string, ready chan<- struct{}) error {
	cmd := exec.CommandContext(ctx, name)
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	out = pipe

	close(ready)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v run failed: %w", name, err)
	}
	return nil
}

func methodPattern() *regexp.Regexp {
	typ := regexp.QuoteMeta(*typeName)
	return regexp.MustCompile(`^func \(\w+ ` + typ + `\) (expect|with)(\w+)\((.*?)\) ` + typ + ` \{`)
}

func generate(ctx context.Context, r namedReader, w io.Writer) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	buf.WriteString("package main\n\n")
	fmt.Fprintf(&buf, "// @generated from %v\n\n", r.Name())

	if args := flag.Args(); len(args) >= 2 {
		buf.WriteString("//go:generate go run scripts/gen_vm_expects.go --")
		for _, arg := range args {
			buf.WriteByte(' ')
			buf.WriteString(arg)
		}
		buf.WriteString("\n\n")
	}

	pattern := methodPattern()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if match := pattern.FindSubmatch(sc.Bytes()); len(match) > 0 {
			writeBinding(&buf, string(match[1]), string(match[2]), match[3])
		}
		if buf.Len() > 0 {
			if _, err := buf.WriteTo(w); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return sc.Err()
}

func writeBinding(buf *bytes.Buffer, prefix, rest string, params []byte) {
	fmt.Fprintf(buf, "func %v%v%v(%s) func(%v) %v {\n", prefix, *infix, rest, params, *typeName, *typeName)
	fmt.Fprintf(buf, "\treturn func(vmt %v) %v {\n", *typeName, *typeName)
	fmt.Fprintf(buf, "\t\treturn vmt.%v%v(", prefix, rest)
	for i, name := range paramNames(params) {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(name)
	}
	buf.WriteString(")\n\t}\n}\n\n")
}

// paramNames returns the argument expressions that forward params, handling
// grouped names like "a, b int64" and a trailing variadic.
func paramNames(params []byte) (names []string) {
	if len(bytes.TrimSpace(params)) == 0 {
		return nil
	}
	for _, part := range bytes.Split(params, []byte(",")) {
		fields := bytes.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := string(fields[0])
		if len(fields) > 1 && bytes.HasPrefix(fields[1], []byte("...")) {
			name += "..."
		}
		names = append(names, name)
	}
	return names
}
