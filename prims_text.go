package main

import (
	"bytes"
	"math/bits"
)

// PARSE ( char "ccc<char>" -- c-addr u )
func (vm *VM) parseWord() error {
	delim, err := vm.dpop()
	if err != nil {
		return err
	}
	addr, n, err := vm.parse(byte(delim))
	if err != nil {
		return err
	}
	return vm.dpushAll(addr, n)
}

// PARSE-NAME ( "name" -- c-addr u )
func (vm *VM) parseNameWord() error {
	addr, n, err := vm.parseName()
	if err != nil {
		return err
	}
	return vm.dpushAll(addr, n)
}

// WORD ( char "<chars>ccc<char>" -- c-addr )
// The counted string is transient, stored at HERE without allotting it.
func (vm *VM) wordWord() error {
	delim, err := vm.dpop()
	if err != nil {
		return err
	}
	var addr, n int64
	if delim == ' ' {
		addr, n, err = vm.parseName()
	} else {
		buf, in, ierr := vm.unparsed()
		if ierr != nil {
			return ierr
		}
		skip := 0
		for skip < len(buf) && buf[skip] == byte(delim) {
			skip++
		}
		vm.stor(regToIn, in+int64(skip))
		addr, n, err = vm.parse(byte(delim))
	}
	if err != nil {
		return err
	}
	word, err := vm.fetchBytes(addr, n)
	if err != nil {
		return err
	}
	h := vm.here()
	if h < dataBase || h >= strBase {
		return rangeError{h, "data space"}
	}
	if err := vm.storeCounted(h, word, int(strBase-h)); err != nil {
		return err
	}
	return vm.dpush(h)
}

// COUNT ( c-addr -- c-addr+1 u )
func (vm *VM) count() error {
	addr, err := vm.dpop()
	if err != nil {
		return err
	}
	n, err := vm.fetchByte(addr)
	if err != nil {
		return err
	}
	return vm.dpushAll(addr+1, int64(n))
}

// COMPARE ( c-addr1 u1 c-addr2 u2 -- n )
func (vm *VM) compare() error {
	addr2, n2, err := vm.pop2()
	if err != nil {
		return err
	}
	addr1, n1, err := vm.pop2()
	if err != nil {
		return err
	}
	a, err := vm.fetchBytes(addr1, n1)
	if err != nil {
		return err
	}
	b, err := vm.fetchBytes(addr2, n2)
	if err != nil {
		return err
	}
	return vm.dpush(int64(bytes.Compare(a, b)))
}

// FIND ( c-addr -- c-addr 0 | xt 1 | xt -1 )
func (vm *VM) findWord() error {
	addr, err := vm.dpop()
	if err != nil {
		return err
	}
	name, err := vm.counted(addr)
	if err != nil {
		return err
	}
	entry, err := vm.find(name)
	if err != nil {
		return err
	}
	if entry == 0 {
		return vm.dpushAll(addr, 0)
	}
	x, imm, err := vm.entryInfo(entry)
	if err != nil {
		return err
	}
	return vm.dpushAll(x.cell(), imm)
}

// >UPPERCASE ( c-addr u -- c-addr u )
// Folds the string to upper case in place.
func (vm *VM) toUppercase() error {
	addr, n, err := vm.pop2()
	if err != nil {
		return err
	}
	buf, err := vm.fetchBytes(addr, n)
	if err != nil {
		return err
	}
	if err := vm.storeBytes(addr, upper(buf)); err != nil {
		return err
	}
	return vm.dpushAll(addr, n)
}

// CHAR ( "name" -- c )
func (vm *VM) char() error {
	c, err := vm.parseChar()
	if err != nil {
		return err
	}
	return vm.dpush(c)
}

// [CHAR] ( "name" -- )
func (vm *VM) bracketChar() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	c, err := vm.parseChar()
	if err != nil {
		return err
	}
	return vm.compileLit(c)
}

func (vm *VM) parseChar() (int64, error) {
	name, err := vm.parseNameBytes()
	if err != nil {
		return 0, err
	}
	return int64(name[0]), nil
}

// ( ( "ccc<paren>" -- )
func (vm *VM) paren() error {
	_, _, err := vm.parse(')')
	return err
}

// \ ( "ccc<eol>" -- )
func (vm *VM) backslash() error {
	vm.stor(regToIn, vm.load(regNumTIB))
	return nil
}

// S" ( "ccc<quote>" -- c-addr u )
// When compiling, the string is kept in the string field and pushed at run
// time instead.
func (vm *VM) sQuote() error {
	addr, n, err := vm.stringLiteral()
	if err != nil {
		return err
	}
	if vm.compiling() {
		return vm.compileString(addr, n)
	}
	return vm.dpushAll(addr, n)
}

// ." ( "ccc<quote>" -- )
func (vm *VM) dotQuote() error {
	if !vm.compiling() {
		addr, n, err := vm.parse('"')
		if err != nil {
			return err
		}
		return vm.typeBytes(addr, n)
	}
	addr, n, err := vm.stringLiteral()
	if err != nil {
		return err
	}
	if err := vm.compileString(addr, n); err != nil {
		return err
	}
	return vm.compileXT(vm.rt.typ)
}

// stringLiteral parses a quote delimited string, copying it into the string
// field.
func (vm *VM) stringLiteral() (addr, n int64, err error) {
	src, n, err := vm.parse('"')
	if err != nil {
		return 0, 0, err
	}
	buf, err := vm.fetchBytes(src, n)
	if err != nil {
		return 0, 0, err
	}
	addr = vm.load(regStr)
	if addr < strBase || addr+n > strEnd {
		return 0, 0, rangeError{addr, "string field"}
	}
	if err := vm.storeBytes(addr, buf); err != nil {
		return 0, 0, err
	}
	vm.stor(regStr, addr+n)
	return addr, n, nil
}

func (vm *VM) compileString(addr, n int64) error {
	if err := vm.compileXT(vm.rt.slit); err != nil {
		return err
	}
	if err := vm.comma(addr); err != nil {
		return err
	}
	return vm.comma(n)
}

// >NUMBER ( ud c-addr u -- ud' c-addr' u' )
func (vm *VM) toNumber() error {
	addr, n, err := vm.pop2()
	if err != nil {
		return err
	}
	lo, hi, err := vm.pop2()
	if err != nil {
		return err
	}
	buf, err := vm.fetchBytes(addr, n)
	if err != nil {
		return err
	}
	ulo, uhi := uint64(lo), uint64(hi)
	i := 0
	for ; i < len(buf) && '0' <= buf[i] && buf[i] <= '9'; i++ {
		carry, prod := bits.Mul64(ulo, 10)
		var c uint64
		ulo, c = bits.Add64(prod, uint64(buf[i]-'0'), 0)
		uhi = uhi*10 + carry + c
	}
	return vm.dpushAll(int64(ulo), int64(uhi), addr+int64(i), n-int64(i))
}
