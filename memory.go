package main

// Register cells sit at fixed aligned offsets well inside the image, so
// accessing them cannot fail.

func (vm *VM) load(reg uint) int64 {
	val, _ := vm.image.LoadCell(reg)
	return val
}

func (vm *VM) stor(reg uint, val int64) {
	_ = vm.image.StorCell(reg, val)
}

func (vm *VM) ip() int64      { return vm.load(regIP) }
func (vm *VM) setIP(ip int64) { vm.stor(regIP, ip) }

func checkAddr(addr int64, op string) (uint, error) {
	if addr < 0 {
		return 0, rangeError{addr, op}
	}
	return uint(addr), nil
}

func (vm *VM) fetchCell(addr int64) (int64, error) {
	a, err := checkAddr(addr, "load")
	if err == nil {
		var val int64
		if val, err = vm.image.LoadCell(a); err == nil {
			return val, nil
		}
	}
	return 0, memFault(err)
}

func (vm *VM) storeCell(addr, val int64) error {
	a, err := checkAddr(addr, "stor")
	if err == nil {
		err = vm.image.StorCell(a, val)
	}
	return memFault(err)
}

func (vm *VM) fetchByte(addr int64) (byte, error) {
	a, err := checkAddr(addr, "load")
	if err == nil {
		var b byte
		if b, err = vm.image.LoadByte(a); err == nil {
			return b, nil
		}
	}
	return 0, memFault(err)
}

func (vm *VM) storeByte(addr int64, b byte) error {
	a, err := checkAddr(addr, "stor")
	if err == nil {
		err = vm.image.StorByte(a, b)
	}
	return memFault(err)
}

// fetchBytes copies n bytes starting at addr out of memory.
func (vm *VM) fetchBytes(addr, n int64) ([]byte, error) {
	if n < 0 {
		return nil, rangeError{n, "length"}
	}
	a, err := checkAddr(addr, "load")
	if err != nil {
		return nil, err
	}
	if n > memSize {
		return nil, rangeError{addr, "load"}
	}
	buf := make([]byte, n)
	if err := vm.image.LoadInto(a, buf); err != nil {
		return nil, memFault(err)
	}
	return buf, nil
}

func (vm *VM) storeBytes(addr int64, p []byte) error {
	a, err := checkAddr(addr, "stor")
	if err == nil {
		err = vm.image.Stor(a, p)
	}
	return memFault(err)
}

// counted reads a counted string: a length byte followed by that many bytes.
func (vm *VM) counted(addr int64) ([]byte, error) {
	n, err := vm.fetchByte(addr)
	if err != nil {
		return nil, err
	}
	return vm.fetchBytes(addr+1, int64(n))
}
