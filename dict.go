package main

import (
	"bytes"

	"github.com/jcorbin/memforth/internal/mem"
)

func (vm *VM) here() int64 { return vm.load(regDS) }

func (vm *VM) setHere(addr int64) error {
	if addr < dataBase || addr > strBase {
		return rangeError{addr, "data space"}
	}
	vm.stor(regDS, addr)
	return nil
}

func aligned(addr int64) int64 {
	if addr < 0 {
		return addr
	}
	return int64(mem.Aligned(uint(addr)))
}

func (vm *VM) allot(n int64) error { return vm.setHere(vm.here() + n) }
func (vm *VM) align() error        { return vm.setHere(aligned(vm.here())) }

// comma appends a cell to data space; HERE must be aligned.
func (vm *VM) comma(val int64) error {
	h := vm.here()
	if h < dataBase || h+cellSize > strBase {
		return rangeError{h, "data space"}
	}
	if err := vm.storeCell(h, val); err != nil {
		return err
	}
	vm.stor(regDS, h+cellSize)
	return nil
}

func (vm *VM) ccomma(b byte) error {
	h := vm.here()
	if h < dataBase || h+1 > strBase {
		return rangeError{h, "data space"}
	}
	if err := vm.storeByte(h, b); err != nil {
		return err
	}
	vm.stor(regDS, h+1)
	return nil
}

func (vm *VM) compileXT(x xt) error { return vm.comma(x.cell()) }

func (vm *VM) compileLit(val int64) error {
	if err := vm.compileXT(vm.rt.lit); err != nil {
		return err
	}
	return vm.comma(val)
}

// header aligns data space and appends a new dictionary entry, linked to the
// latest entry, with a zero xt; it returns the entry address.
func (vm *VM) header(name []byte, flags wordFlags) (int64, error) {
	if len(name) == 0 {
		return 0, errMissingName
	}
	if len(name) > maxNameLen {
		return 0, errNameTooLong
	}
	if err := vm.align(); err != nil {
		return 0, err
	}
	entry := vm.here()
	if entry+hdrSize > strBase {
		return 0, rangeError{entry, "data space"}
	}

	var hdr [hdrSize]byte
	hdr[hdrLen] = byte(len(name))
	copy(hdr[hdrName:], upper(name))
	hdr[hdrFlags] = byte(flags)
	if err := vm.storeBytes(entry, hdr[:]); err != nil {
		return 0, err
	}
	if err := vm.storeCell(entry+hdrLink, vm.load(regLatest)); err != nil {
		return 0, err
	}

	vm.stor(regDS, entry+hdrSize)
	vm.stor(regLatest, entry)
	vm.logf("+", "header %q @%v", name, entry)
	return entry, nil
}

// create appends an entry whose xt runs the given routine with the entry's
// parameter field.
func (vm *VM) create(name []byte, routine xt, flags wordFlags) (int64, error) {
	entry, err := vm.header(name, flags)
	if err == nil {
		routine.pfa = uint(entry + hdrSize)
		err = vm.setXT(entry, routine)
	}
	return entry, err
}

func (vm *VM) defineNative(name string, flags wordFlags, code func(vm *VM, pfa uint) error) (xt, error) {
	if len(vm.natives) >= nativeMax {
		return xt{}, rangeError{nativeBase + int64(len(vm.natives)), "native"}
	}
	x := xt{kind: xtNative, code: nativeBase + uint(len(vm.natives))}
	vm.natives = append(vm.natives, native{name, code})
	entry, err := vm.create([]byte(name), x, flags)
	if err != nil {
		return xt{}, err
	}
	x.pfa = uint(entry + hdrSize)
	return x, nil
}

func (vm *VM) setXT(entry int64, x xt) error { return vm.storeCell(entry+hdrXT, x.cell()) }

func (vm *VM) entryXT(entry int64) (xt, error) {
	val, err := vm.fetchCell(entry + hdrXT)
	if err != nil {
		return xt{}, err
	}
	return decodeXT(val)
}

func (vm *VM) entryFlags(entry int64) (wordFlags, error) {
	b, err := vm.fetchByte(entry + hdrFlags)
	return wordFlags(b), err
}

func (vm *VM) setFlags(entry int64, set, clear wordFlags) error {
	flags, err := vm.entryFlags(entry)
	if err != nil {
		return err
	}
	return vm.storeByte(entry+hdrFlags, byte(flags&^clear|set))
}

func (vm *VM) entryName(entry int64) ([]byte, error) {
	n, err := vm.fetchByte(entry + hdrLen)
	if err != nil {
		return nil, err
	}
	if n > maxNameLen {
		n = maxNameLen
	}
	return vm.fetchBytes(entry+hdrName, int64(n))
}

// find walks the dictionary from the latest entry, returning the first
// visible entry matching name, case insensitively, or 0.
func (vm *VM) find(name []byte) (int64, error) {
	name = upper(name)
	entry := vm.load(regLatest)
	for limit := memSize / hdrSize; entry != 0 && limit > 0; limit-- {
		flags, err := vm.entryFlags(entry)
		if err != nil {
			return 0, err
		}
		if flags&flagHidden == 0 {
			entryName, err := vm.entryName(entry)
			if err != nil {
				return 0, err
			}
			if bytes.Equal(entryName, name) {
				return entry, nil
			}
		}
		if entry, err = vm.fetchCell(entry + hdrLink); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// lookup finds a word, returning its xt, and 1 if it is immediate or -1 if
// not; an unknown word results in an error.
func (vm *VM) lookup(name []byte) (xt, int64, error) {
	entry, err := vm.find(name)
	if err != nil {
		return xt{}, 0, err
	}
	if entry == 0 {
		return xt{}, 0, unknownWordError(name)
	}
	return vm.entryInfo(entry)
}

func (vm *VM) entryInfo(entry int64) (xt, int64, error) {
	x, err := vm.entryXT(entry)
	if err != nil {
		return xt{}, 0, err
	}
	flags, err := vm.entryFlags(entry)
	if err != nil {
		return xt{}, 0, err
	}
	if flags&flagImmediate != 0 {
		return x, 1, nil
	}
	return x, -1, nil
}

// upper returns an ASCII upper cased copy of name.
func upper(name []byte) []byte {
	up := make([]byte, len(name))
	for i, c := range name {
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		up[i] = c
	}
	return up
}
