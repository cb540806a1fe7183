package main

import "strconv"

// emit passes one character code to the output callback.
func (vm *VM) emit(code int64) error {
	if err := vm.emitFn(int(code)); err != nil {
		if !isFault(err) {
			err = hostError{err}
		}
		return err
	}
	return nil
}

func (vm *VM) emitString(s string) error {
	for i := 0; i < len(s); i++ {
		if err := vm.emit(int64(s[i])); err != nil {
			return err
		}
	}
	return nil
}

// writeChar is the default output callback, writing printable ASCII and line
// feeds into the output stream.
func (vm *VM) writeChar(code int) error {
	if code != '\n' && (code < ' ' || code > '~') {
		return printableError(code)
	}
	_, err := vm.out.Write([]byte{byte(code)})
	return err
}

func (vm *VM) typeBytes(addr, n int64) error {
	buf, err := vm.fetchBytes(addr, n)
	if err != nil {
		return err
	}
	for _, c := range buf {
		if err := vm.emit(int64(c)); err != nil {
			return err
		}
	}
	return nil
}

// EMIT ( c -- )
func (vm *VM) emitWord() error {
	c, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.emit(c)
}

// TYPE ( c-addr u -- )
func (vm *VM) typeWord() error {
	addr, n, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.typeBytes(addr, n)
}

// CR ( -- )
func (vm *VM) cr() error { return vm.emit('\n') }

// SPACE ( -- )
func (vm *VM) space() error { return vm.emit(' ') }

// SPACES ( n -- )
func (vm *VM) spaces() error {
	n, err := vm.dpop()
	if err != nil {
		return err
	}
	for ; n > 0; n-- {
		if err := vm.emit(' '); err != nil {
			return err
		}
	}
	return nil
}

// . ( n -- )
func (vm *VM) dot() error {
	n, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.emitString(strconv.FormatInt(n, 10) + " ")
}

// .S ( -- )
func (vm *VM) dotS() error {
	vals := vm.values(dataStack)
	buf := make([]byte, 0, 8*len(vals)+8)
	buf = append(buf, '<')
	buf = strconv.AppendInt(buf, int64(len(vals)), 10)
	buf = append(buf, "> "...)
	for _, val := range vals {
		buf = strconv.AppendInt(buf, val, 10)
		buf = append(buf, ' ')
	}
	return vm.emitString(string(buf))
}

// PAGE ( -- )
func (vm *VM) page() error {
	if vm.pageFn == nil {
		return vm.emit('\n')
	}
	if err := vm.out.Flush(); err != nil {
		return hostError{err}
	}
	if err := vm.pageFn(); err != nil {
		return hostError{err}
	}
	return nil
}

// WORDS ( -- )
func (vm *VM) words() error {
	sep := ""
	for entry, limit := vm.load(regLatest), memSize/hdrSize; entry != 0 && limit > 0; limit-- {
		flags, err := vm.entryFlags(entry)
		if err != nil {
			return err
		}
		if flags&flagHidden == 0 {
			name, err := vm.entryName(entry)
			if err != nil {
				return err
			}
			if err := vm.emitString(sep + string(name)); err != nil {
				return err
			}
			sep = " "
		}
		if entry, err = vm.fetchCell(entry + hdrLink); err != nil {
			return err
		}
	}
	return vm.emit('\n')
}
