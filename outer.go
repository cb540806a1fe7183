package main

import (
	"errors"
	"strconv"

	"github.com/jcorbin/memforth/internal/panicerr"
	"github.com/jcorbin/memforth/internal/runeio"
)

// unparsed returns the remainder of the input buffer, along with its
// starting offset; >IN and #TIB are clamped to the buffer.
func (vm *VM) unparsed() ([]byte, int64, error) {
	n := vm.load(regNumTIB)
	if n < 0 || n > tibSize {
		n = tibSize
	}
	in := vm.load(regToIn)
	if in < 0 || in > n {
		in = n
	}
	buf, err := vm.fetchBytes(tibBase+in, n-in)
	return buf, in, err
}

func isSpace(c byte) bool { return c <= ' ' }

// parseName skips leading white space, then returns the address and length
// of the following name in the input buffer, advancing >IN past it and one
// trailing delimiter.
func (vm *VM) parseName() (addr, n int64, err error) {
	buf, in, err := vm.unparsed()
	if err != nil {
		return 0, 0, err
	}
	i := 0
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	j := i
	for j < len(buf) && !isSpace(buf[j]) {
		j++
	}
	next := j
	if next < len(buf) {
		next++
	}
	vm.stor(regToIn, in+int64(next))
	return tibBase + in + int64(i), int64(j - i), nil
}

// parse returns the input up to the next delim, advancing >IN past it.
func (vm *VM) parse(delim byte) (addr, n int64, err error) {
	buf, in, err := vm.unparsed()
	if err != nil {
		return 0, 0, err
	}
	j := 0
	for j < len(buf) && buf[j] != delim {
		j++
	}
	next := j
	if next < len(buf) {
		next++
	}
	vm.stor(regToIn, in+int64(next))
	return tibBase + in, int64(j), nil
}

// parseNameBytes parses a name for defining words; a missing name is a
// compile context fault.
func (vm *VM) parseNameBytes() ([]byte, error) {
	addr, n, err := vm.parseName()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errMissingName
	}
	return vm.fetchBytes(addr, n)
}

// storeCounted writes p as a counted string at addr, truncating to fit size
// bytes.
func (vm *VM) storeCounted(addr int64, p []byte, size int) error {
	limit := size - 1
	if limit > 255 {
		limit = 255
	}
	if len(p) > limit {
		p = p[:limit]
	}
	if err := vm.storeByte(addr, byte(len(p))); err != nil {
		return err
	}
	return vm.storeBytes(addr+1, p)
}

// interpretLine runs the outer interpreter over one line of text.
func (vm *VM) interpretLine(line string) error {
	if len(line) > tibSize {
		vm.logf("!", "truncating %v byte line", len(line))
		line = line[:tibSize]
	}
	if err := vm.storeBytes(tibBase, []byte(line)); err != nil {
		return err
	}
	vm.stor(regNumTIB, int64(len(line)))
	vm.stor(regToIn, 0)

	for {
		addr, n, err := vm.parseName()
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		name, err := vm.fetchBytes(addr, n)
		if err != nil {
			return err
		}
		if err := vm.storeCounted(wordBase, name, wordSize); err != nil {
			return err
		}
		vm.word = string(name)
		if err := vm.interpretWord(name); err != nil {
			return err
		}
	}
	vm.word = ""

	if !vm.compiling() {
		return vm.emitString(" ok\n")
	}
	return nil
}

func (vm *VM) interpretWord(name []byte) error {
	pod := upper(name)
	if err := vm.storeCounted(podBase, pod, podSize); err != nil {
		return err
	}
	entry, err := vm.find(pod)
	if err != nil {
		return err
	}

	if entry != 0 {
		x, imm, err := vm.entryInfo(entry)
		if err != nil {
			return err
		}
		if vm.compiling() && imm != 1 {
			vm.logf(">", "compile %s", name)
			return vm.compileXT(x)
		}
		flags, err := vm.entryFlags(entry)
		if err != nil {
			return err
		}
		if !vm.compiling() && flags&flagNoInterp != 0 {
			return errCompileOnly
		}
		vm.logf(">", "execute %s", name)
		return vm.run(x)
	}

	val, ok := parseNumber(string(name))
	if !ok {
		return unknownWordError(name)
	}
	if vm.compiling() {
		vm.logf(">", "compile literal %v", val)
		return vm.compileLit(val)
	}
	return vm.dpush(val)
}

// parseNumber converts a signed decimal number, or a character literal like
// 'a' or <ESC>.
func parseNumber(token string) (int64, bool) {
	if val, err := strconv.ParseInt(token, 10, 64); err == nil {
		return val, true
	}
	if r, ok := runeio.ParseChar(token); ok {
		return int64(r), true
	}
	return 0, false
}

// abort resets the machine after a fault and reports it through the output
// callback, as the word being interpreted followed by a short message.
func (vm *VM) abort(err error) {
	vm.clear(dataStack)
	vm.clear(returnStack)
	vm.clear(controlStack)
	vm.setIP(0)
	vm.stor(regState, 0)

	word := vm.word
	var unknown unknownWordError
	if errors.As(err, &unknown) {
		word = string(unknown)
	}
	vm.word = ""
	vm.logf("!", "%q: %v", word, err)

	report := make([]byte, 0, len(word)+32)
	report = append(report, ' ')
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < ' ' || c > '~' {
			c = '?'
		}
		report = append(report, c)
	}
	if len(word) > 0 {
		report = append(report, ' ')
	}
	report = append(report, faultMessage(err)...)
	report = append(report, '\n')

	if rerr := panicerr.Recover("report", func() error {
		return vm.emitString(string(report))
	}); rerr != nil {
		vm.logf("!", "unable to report fault: %v", rerr)
	}
}

// : ( "name" -- )
func (vm *VM) colon() error {
	if vm.compiling() {
		return errNested
	}
	name, err := vm.parseNameBytes()
	if err != nil {
		return err
	}
	entry, err := vm.header(name, flagHidden)
	if err != nil {
		return err
	}
	code := uint(vm.here())
	if err := vm.setXT(entry, xt{kind: xtCompiled, code: code, pfa: code}); err != nil {
		return err
	}
	vm.clear(controlStack)
	vm.stor(regState, flagTrue)
	return nil
}

// ; ( -- )
func (vm *VM) semicolon() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	if vm.depth(controlStack) != 0 {
		return errUnstructured
	}
	if err := vm.compileXT(vm.rt.exit); err != nil {
		return err
	}
	if err := vm.setFlags(vm.load(regLatest), 0, flagHidden); err != nil {
		return err
	}
	vm.stor(regState, flagFalse)
	return nil
}
