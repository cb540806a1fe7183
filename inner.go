package main

// ctxCheckInterval is how many inner interpreter steps run between context
// checks.
const ctxCheckInterval = 1024

// execute performs one xt: native routines run immediately, while entering
// compiled code saves IP on the return stack and points IP just before the
// definition's first cell.
func (vm *VM) execute(x xt) error {
	switch x.kind {
	case xtNative:
		i := int(x.code) - nativeBase
		if i < 0 || i >= len(vm.natives) {
			return xtError(x.cell())
		}
		return vm.natives[i].code(vm, x.pfa)
	case xtCompiled:
		if err := vm.rpush(vm.ip()); err != nil {
			return err
		}
		vm.setIP(int64(x.code) - cellSize)
		return nil
	}
	return xtError(x.cell())
}

// run executes x, then steps any threaded code it entered until IP returns to
// zero.
func (vm *VM) run(x xt) error {
	if err := vm.execute(x); err != nil {
		return err
	}
	for vm.ip() != 0 {
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) step() error {
	vm.steps++
	if vm.ctx != nil && vm.steps%ctxCheckInterval == 0 {
		if err := vm.ctx.Err(); err != nil {
			return hostError{err}
		}
	}

	ip := vm.ip() + cellSize
	vm.setIP(ip)
	val, err := vm.fetchCell(ip)
	if err != nil {
		return err
	}
	x, err := decodeXT(val)
	if err != nil {
		return err
	}
	if vm.logfn != nil {
		vm.logf("@", "%v %s ds:%v rs:%v", ip, vm.xtName(x), vm.values(dataStack), vm.values(returnStack))
	}
	return vm.execute(x)
}

// xtName returns the dictionary name of x, for tracing.
func (vm *VM) xtName(x xt) []byte {
	if x.kind == xtNative {
		if i := int(x.code) - nativeBase; i >= 0 && i < len(vm.natives) {
			return []byte(vm.natives[i].name)
		}
	} else if name, err := vm.entryName(int64(x.pfa) - hdrSize); err == nil {
		return name
	}
	return []byte("?")
}

// operand returns the cell following the current one in threaded code.
func (vm *VM) operand() (int64, error) { return vm.fetchCell(vm.ip() + cellSize) }

func (vm *VM) skip(n int64) { vm.setIP(vm.ip() + n*cellSize) }

func (vm *VM) branchTo(target int64) error {
	if target < dataBase || target >= strBase || target%cellSize != 0 {
		return branchError(target)
	}
	vm.setIP(target - cellSize)
	return nil
}

// branch takes the branch whose target is the next cell.
func (vm *VM) branch() error {
	target, err := vm.operand()
	if err != nil {
		return err
	}
	return vm.branchTo(target)
}

// (LIT) ( -- n )
func (vm *VM) lit(uint) error {
	val, err := vm.operand()
	if err != nil {
		return err
	}
	vm.skip(1)
	return vm.dpush(val)
}

// (BRANCH) ( -- )
func (vm *VM) branchAlways(uint) error { return vm.branch() }

// (0BRANCH) ( flag -- )
func (vm *VM) branchZero(uint) error {
	flag, err := vm.dpop()
	if err != nil {
		return err
	}
	if flag == 0 {
		return vm.branch()
	}
	vm.skip(1)
	return nil
}

// EXIT ( -- ) ( R: ip -- )
func (vm *VM) exit(uint) error {
	if vm.depth(returnStack) == 0 {
		vm.setIP(0)
		return nil
	}
	ip, err := vm.rpop()
	if err != nil {
		return err
	}
	vm.setIP(ip)
	return nil
}

// doParams moves loop parameters to the return stack.
// ( limit index -- ) ( R: -- limit index )
func (vm *VM) doParams() (limit, index int64, err error) {
	if limit, index, err = vm.pop2(); err == nil {
		if err = vm.rpush(limit); err == nil {
			err = vm.rpush(index)
		}
	}
	return limit, index, err
}

// (DO) ( limit index -- ) ( R: -- limit index )
func (vm *VM) do(uint) error {
	if _, _, err := vm.doParams(); err != nil {
		return err
	}
	vm.skip(1)
	return nil
}

// (?DO) ( limit index -- ) ( R: -- limit index )
func (vm *VM) qdo(uint) error {
	limit, index, err := vm.doParams()
	if err != nil {
		return err
	}
	if limit == index {
		return vm.branch()
	}
	vm.skip(1)
	return nil
}

// (LOOP) ( -- ) ( R: limit index -- limit index' )
func (vm *VM) loop(uint) error {
	return vm.loopStep(1, func(limit, _, index int64) bool {
		return index < limit
	})
}

// (+LOOP) ( n -- ) ( R: limit index -- limit index' )
func (vm *VM) ploop(uint) error {
	n, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.loopStep(n, func(limit, prior, index int64) bool {
		// continue unless the boundary between limit-1 and limit was crossed
		d := prior - limit
		return (d^(index-limit)) >= 0 || (d^n) >= 0
	})
}

func (vm *VM) loopStep(n int64, again func(limit, prior, index int64) bool) error {
	limit, err := vm.rpick(1)
	if err != nil {
		return err
	}
	prior, err := vm.rpick(0)
	if err != nil {
		return err
	}
	index := prior + n
	if err := vm.poke(returnStack, 0, index); err != nil {
		return err
	}
	if again(limit, prior, index) {
		return vm.branch()
	}
	vm.skip(1)
	return nil
}

// UNLOOP ( -- ) ( R: limit index -- )
func (vm *VM) unloop(uint) error {
	if _, err := vm.rpop(); err != nil {
		return err
	}
	_, err := vm.rpop()
	return err
}

// (SLIT) ( -- c-addr u )
func (vm *VM) slit(uint) error {
	addr, err := vm.operand()
	if err != nil {
		return err
	}
	n, err := vm.fetchCell(vm.ip() + 2*cellSize)
	if err != nil {
		return err
	}
	vm.skip(2)
	return vm.dpushAll(addr, n)
}

// (DOCREATE) ( -- addr )
func (vm *VM) doCreate(pfa uint) error { return vm.dpush(int64(pfa)) }

// (DOCONST) ( -- n )
func (vm *VM) doConst(pfa uint) error {
	val, err := vm.fetchCell(int64(pfa))
	if err != nil {
		return err
	}
	return vm.dpush(val)
}
