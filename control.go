package main

// Control flow stack entries carry a tag above the address, so that a
// structure closed by the wrong word is detected. A LEAVE pair is the leave
// sentinel followed by the orig of a forward branch to the loop exit; DO pushes
// one for its own exit placeholder.
const (
	cfLeave    int64 = -1
	cfTagShift       = 32
	cfAddrMask int64 = 1<<cfTagShift - 1

	cfOrig   int64 = 1 << cfTagShift
	cfDest   int64 = 2 << cfTagShift
	cfDoDest int64 = 3 << cfTagShift
)

func (vm *VM) cfPush(tag, addr int64) error { return vm.push(controlStack, tag|addr) }

// leavePairAt reports whether the i-th control entry is the upper half of a
// LEAVE pair.
func (vm *VM) leavePairAt(i int64) bool {
	below, err := vm.pick(controlStack, i+1)
	return err == nil && below == cfLeave
}

// cfTake removes and returns the address of the topmost control entry that is
// not part of a LEAVE pair; it must carry the given tag.
func (vm *VM) cfTake(tag int64) (int64, error) {
	for i := int64(0); ; i += 2 {
		entry, err := vm.pick(controlStack, i)
		if err != nil {
			return 0, errUnstructured
		}
		if vm.leavePairAt(i) {
			continue
		}
		if entry&^cfAddrMask != tag {
			return 0, errUnstructured
		}
		return entry & cfAddrMask, vm.cfRemove(i)
	}
}

func (vm *VM) cfRemove(i int64) error {
	for ; i > 0; i-- {
		val, err := vm.pick(controlStack, i-1)
		if err != nil {
			return err
		}
		if err := vm.poke(controlStack, i, val); err != nil {
			return err
		}
	}
	_, err := vm.pop(controlStack)
	return err
}

// forward compiles a branch with a placeholder target, returning the address
// of the placeholder.
func (vm *VM) forward(branch xt) (int64, error) {
	if err := vm.compileXT(branch); err != nil {
		return 0, err
	}
	orig := vm.here()
	return orig, vm.comma(0)
}

func (vm *VM) backward(branch xt, dest int64) error {
	if err := vm.compileXT(branch); err != nil {
		return err
	}
	return vm.comma(dest)
}

func (vm *VM) resolve(orig, target int64) error { return vm.storeCell(orig, target) }

func (vm *VM) compileOnly() error {
	if !vm.compiling() {
		return errCompileOnly
	}
	return nil
}

// IF ( -- orig )
func (vm *VM) ifWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	orig, err := vm.forward(vm.rt.zbranch)
	if err != nil {
		return err
	}
	return vm.cfPush(cfOrig, orig)
}

// ELSE ( orig1 -- orig2 )
func (vm *VM) elseWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	orig1, err := vm.cfTake(cfOrig)
	if err != nil {
		return err
	}
	orig2, err := vm.forward(vm.rt.branch)
	if err != nil {
		return err
	}
	if err := vm.resolve(orig1, vm.here()); err != nil {
		return err
	}
	return vm.cfPush(cfOrig, orig2)
}

// THEN ( orig -- )
func (vm *VM) thenWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	orig, err := vm.cfTake(cfOrig)
	if err != nil {
		return err
	}
	return vm.resolve(orig, vm.here())
}

// BEGIN ( -- dest )
func (vm *VM) beginWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	return vm.cfPush(cfDest, vm.here())
}

// AGAIN ( dest -- )
func (vm *VM) againWord() error { return vm.closeBegin(vm.rt.branch) }

// UNTIL ( dest -- )
func (vm *VM) untilWord() error { return vm.closeBegin(vm.rt.zbranch) }

func (vm *VM) closeBegin(branch xt) error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	dest, err := vm.cfTake(cfDest)
	if err != nil {
		return err
	}
	return vm.backward(branch, dest)
}

// WHILE ( dest -- dest orig )
func (vm *VM) whileWord() error { return vm.ifWord() }

// REPEAT ( dest orig -- )
func (vm *VM) repeatWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	orig, err := vm.cfTake(cfOrig)
	if err != nil {
		return err
	}
	dest, err := vm.cfTake(cfDest)
	if err != nil {
		return err
	}
	if err := vm.backward(vm.rt.branch, dest); err != nil {
		return err
	}
	return vm.resolve(orig, vm.here())
}

// DO ( -- leave orig do-dest )
func (vm *VM) doWord() error { return vm.openLoop(vm.rt.do) }

// ?DO ( -- leave orig do-dest )
func (vm *VM) qdoWord() error { return vm.openLoop(vm.rt.qdo) }

func (vm *VM) openLoop(runtime xt) error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	orig, err := vm.forward(runtime)
	if err != nil {
		return err
	}
	if err := vm.push(controlStack, cfLeave); err != nil {
		return err
	}
	if err := vm.cfPush(cfOrig, orig); err != nil {
		return err
	}
	return vm.cfPush(cfDoDest, vm.here())
}

// LEAVE ( -- leave orig )
func (vm *VM) leaveWord() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	inLoop := false
	for _, entry := range vm.values(controlStack) {
		if entry != cfLeave && entry&^cfAddrMask == cfDoDest {
			inLoop = true
		}
	}
	if !inLoop {
		return errUnstructured
	}
	orig, err := vm.forward(vm.rt.branch)
	if err != nil {
		return err
	}
	if err := vm.push(controlStack, cfLeave); err != nil {
		return err
	}
	return vm.cfPush(cfOrig, orig)
}

// LOOP ( leave orig do-dest [leave orig]... -- )
func (vm *VM) loopWord() error { return vm.closeLoop(vm.rt.loop) }

// +LOOP ( leave orig do-dest [leave orig]... -- )
func (vm *VM) ploopWord() error { return vm.closeLoop(vm.rt.ploop) }

func (vm *VM) closeLoop(runtime xt) error {
	if err := vm.compileOnly(); err != nil {
		return err
	}

	var origs []int64
	for vm.leavePairAt(0) {
		orig, err := vm.popLeave()
		if err != nil {
			return err
		}
		origs = append(origs, orig)
	}

	dest, err := vm.cfTake(cfDoDest)
	if err != nil {
		return err
	}
	if err := vm.backward(runtime, dest); err != nil {
		return err
	}

	if !vm.leavePairAt(0) {
		return errUnstructured
	}
	orig, err := vm.popLeave()
	if err != nil {
		return err
	}
	origs = append(origs, orig)

	exit := vm.here()
	if err := vm.compileXT(vm.rt.unloop); err != nil {
		return err
	}
	for _, orig := range origs {
		if err := vm.resolve(orig, exit); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) popLeave() (int64, error) {
	entry, err := vm.pop(controlStack)
	if err != nil {
		return 0, err
	}
	if _, err := vm.pop(controlStack); err != nil {
		return 0, err
	}
	if entry&^cfAddrMask != cfOrig {
		return 0, errUnstructured
	}
	return entry & cfAddrMask, nil
}
