package main

// stackRegion describes a stack living in memory: its pointer register, and
// the bounds of its cells. Stacks grow upward; the pointer addresses the next
// free cell.
type stackRegion struct {
	name      string
	reg       uint
	base, end uint
}

var (
	dataStack    = stackRegion{"data stack", regS, dstackBase, dstackBase + dstackSize}
	returnStack  = stackRegion{"return stack", regR, rstackBase, rstackBase + rstackSize}
	controlStack = stackRegion{"control stack", regCF, cfstackBase, cfstackBase + cfstackSize}
)

func (vm *VM) stackPtr(s stackRegion) (uint, error) {
	p := vm.load(s.reg)
	if p < int64(s.base) || p > int64(s.end) || (p-int64(s.base))%cellSize != 0 {
		return 0, stackError{s.name, "pointer corrupt"}
	}
	return uint(p), nil
}

func (vm *VM) push(s stackRegion, val int64) error {
	p, err := vm.stackPtr(s)
	if err != nil {
		return err
	}
	if p+cellSize > s.end {
		return stackError{s.name, "overflow"}
	}
	if err := vm.image.StorCell(p, val); err != nil {
		return memFault(err)
	}
	vm.stor(s.reg, int64(p+cellSize))
	return nil
}

func (vm *VM) pop(s stackRegion) (int64, error) {
	p, err := vm.stackPtr(s)
	if err != nil {
		return 0, err
	}
	if p <= s.base {
		return 0, stackError{s.name, "underflow"}
	}
	p -= cellSize
	val, err := vm.image.LoadCell(p)
	if err != nil {
		return 0, memFault(err)
	}
	vm.stor(s.reg, int64(p))
	return val, nil
}

// cellAt returns the address of the i-th cell down from the top of stack.
func (vm *VM) cellAt(s stackRegion, i int64) (uint, error) {
	p, err := vm.stackPtr(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, stackError{s.name, "index out of range"}
	}
	if depth := int64(p-s.base) / cellSize; i >= depth {
		return 0, stackError{s.name, "underflow"}
	}
	return p - uint(i+1)*cellSize, nil
}

// pick returns the i-th value down from the top, 0 being the top itself.
func (vm *VM) pick(s stackRegion, i int64) (int64, error) {
	addr, err := vm.cellAt(s, i)
	if err != nil {
		return 0, err
	}
	val, err := vm.image.LoadCell(addr)
	return val, memFault(err)
}

func (vm *VM) poke(s stackRegion, i, val int64) error {
	addr, err := vm.cellAt(s, i)
	if err != nil {
		return err
	}
	return memFault(vm.image.StorCell(addr, val))
}

func (vm *VM) depth(s stackRegion) int {
	p, err := vm.stackPtr(s)
	if err != nil {
		return 0
	}
	return int(p-s.base) / cellSize
}

func (vm *VM) clear(s stackRegion) { vm.stor(s.reg, int64(s.base)) }

// values returns the stack contents, bottom first.
func (vm *VM) values(s stackRegion) []int64 {
	n := vm.depth(s)
	vals := make([]int64, n)
	for i := range vals {
		vals[i], _ = vm.pick(s, int64(n-1-i))
	}
	return vals
}

func (vm *VM) dpush(val int64) error        { return vm.push(dataStack, val) }
func (vm *VM) dpop() (int64, error)         { return vm.pop(dataStack) }
func (vm *VM) rpush(val int64) error        { return vm.push(returnStack, val) }
func (vm *VM) rpop() (int64, error)         { return vm.pop(returnStack) }
func (vm *VM) rpick(i int64) (int64, error) { return vm.pick(returnStack, i) }

func (vm *VM) dpushAll(vals ...int64) error {
	for _, val := range vals {
		if err := vm.dpush(val); err != nil {
			return err
		}
	}
	return nil
}

// pop2 pops b then a, returning them in stack order.
func (vm *VM) pop2() (a, b int64, err error) {
	if b, err = vm.dpop(); err == nil {
		a, err = vm.dpop()
	}
	return a, b, err
}

func (vm *VM) pop3() (a, b, c int64, err error) {
	if c, err = vm.dpop(); err == nil {
		a, b, err = vm.pop2()
	}
	return a, b, c, err
}
