package main

// primitive is a built in word implemented by the host.
type primitive struct {
	name  string
	flags wordFlags
	code  func(vm *VM) error
}

const compileOnly = flagImmediate | flagNoInterp

// primitives lists the visible built in words, in definition order.
var primitives = []primitive{
	// arithmetic
	{"+", 0, binop(func(a, b int64) int64 { return a + b })},
	{"-", 0, binop(func(a, b int64) int64 { return a - b })},
	{"*", 0, binop(func(a, b int64) int64 { return a * b })},
	{"/", 0, divop(floorDiv)},
	{"MOD", 0, divop(func(a, b int64) int64 { return a % b })},
	{"/MOD", 0, (*VM).divMod},
	{"NEGATE", 0, unop(func(a int64) int64 { return -a })},
	{"ABS", 0, unop(func(a int64) int64 {
		if a < 0 {
			return -a
		}
		return a
	})},
	{"MIN", 0, binop(func(a, b int64) int64 {
		if b < a {
			return b
		}
		return a
	})},
	{"MAX", 0, binop(func(a, b int64) int64 {
		if b > a {
			return b
		}
		return a
	})},
	{"1+", 0, unop(func(a int64) int64 { return a + 1 })},
	{"1-", 0, unop(func(a int64) int64 { return a - 1 })},
	{"2*", 0, unop(func(a int64) int64 { return a << 1 })},
	{"2/", 0, unop(func(a int64) int64 { return a >> 1 })},
	{"AND", 0, binop(func(a, b int64) int64 { return a & b })},
	{"OR", 0, binop(func(a, b int64) int64 { return a | b })},
	{"XOR", 0, binop(func(a, b int64) int64 { return a ^ b })},
	{"INVERT", 0, unop(func(a int64) int64 { return ^a })},
	{"LSHIFT", 0, binop(func(a, b int64) int64 { return int64(uint64(a) << uint64(b)) })},
	{"RSHIFT", 0, binop(func(a, b int64) int64 { return int64(uint64(a) >> uint64(b)) })},

	// comparison
	{"=", 0, cmpop(func(a, b int64) bool { return a == b })},
	{"<>", 0, cmpop(func(a, b int64) bool { return a != b })},
	{"<", 0, cmpop(func(a, b int64) bool { return a < b })},
	{">", 0, cmpop(func(a, b int64) bool { return a > b })},
	{"U<", 0, cmpop(func(a, b int64) bool { return uint64(a) < uint64(b) })},
	{"0=", 0, unop(func(a int64) int64 { return boolFlag(a == 0) })},
	{"0<", 0, unop(func(a int64) int64 { return boolFlag(a < 0) })},
	{"0>", 0, unop(func(a int64) int64 { return boolFlag(a > 0) })},
	{"TRUE", 0, constant(flagTrue)},
	{"FALSE", 0, constant(flagFalse)},

	// data stack
	{"DUP", 0, (*VM).dup},
	{"DROP", 0, (*VM).drop},
	{"SWAP", 0, (*VM).swap},
	{"OVER", 0, (*VM).over},
	{"ROT", 0, (*VM).rot},
	{"-ROT", 0, (*VM).unrot},
	{"NIP", 0, (*VM).nip},
	{"TUCK", 0, (*VM).tuck},
	{"PICK", 0, (*VM).pickWord},
	{"?DUP", 0, (*VM).qdup},
	{"DEPTH", 0, (*VM).depthWord},
	{"2DUP", 0, (*VM).dup2},
	{"2DROP", 0, (*VM).drop2},
	{"2SWAP", 0, (*VM).swap2},
	{"2OVER", 0, (*VM).over2},

	// return stack
	{">R", 0, (*VM).toR},
	{"R>", 0, (*VM).fromR},
	{"R@", 0, (*VM).fetchR},
	{"I", flagNoInterp, (*VM).loopI},
	{"J", flagNoInterp, (*VM).loopJ},

	// memory
	{"@", 0, (*VM).fetch},
	{"!", 0, (*VM).store},
	{"+!", 0, (*VM).plusStore},
	{"C@", 0, (*VM).cfetch},
	{"C!", 0, (*VM).cstore},
	{",", 0, (*VM).commaWord},
	{"C,", 0, (*VM).ccommaWord},
	{"ALLOT", 0, (*VM).allotWord},
	{"ALIGN", 0, (*VM).align},
	{"ALIGNED", 0, unop(aligned)},
	{"CELLS", 0, unop(func(a int64) int64 { return a * cellSize })},
	{"CELL+", 0, unop(func(a int64) int64 { return a + cellSize })},
	{"HERE", 0, (*VM).hereWord},
	{"STATE", 0, constant(regState)},
	{">IN", 0, constant(regToIn)},
	{"CREATE", 0, (*VM).createWord},
	{"VARIABLE", 0, (*VM).variable},
	{"CONSTANT", 0, (*VM).constantWord},
	{"VALUE", 0, (*VM).value},
	{"TO", flagImmediate, (*VM).to},

	// compiler
	{":", 0, (*VM).colon},
	{";", compileOnly, (*VM).semicolon},
	{"IMMEDIATE", 0, (*VM).immediate},
	{"HIDE", 0, (*VM).hide},
	{"[", flagImmediate, (*VM).leftBracket},
	{"]", 0, (*VM).rightBracket},
	{"'", 0, (*VM).tick},
	{"[']", compileOnly, (*VM).bracketTick},
	{"EXECUTE", 0, (*VM).executeWord},
	{"LITERAL", compileOnly, (*VM).literal},
	{"COMPILE,", 0, (*VM).compileComma},
	{"POSTPONE", compileOnly, (*VM).postpone},
	{"RECURSE", compileOnly, (*VM).recurse},

	// control flow
	{"IF", compileOnly, (*VM).ifWord},
	{"ELSE", compileOnly, (*VM).elseWord},
	{"THEN", compileOnly, (*VM).thenWord},
	{"BEGIN", compileOnly, (*VM).beginWord},
	{"AGAIN", compileOnly, (*VM).againWord},
	{"UNTIL", compileOnly, (*VM).untilWord},
	{"WHILE", compileOnly, (*VM).whileWord},
	{"REPEAT", compileOnly, (*VM).repeatWord},
	{"DO", compileOnly, (*VM).doWord},
	{"?DO", compileOnly, (*VM).qdoWord},
	{"LEAVE", compileOnly, (*VM).leaveWord},
	{"LOOP", compileOnly, (*VM).loopWord},
	{"+LOOP", compileOnly, (*VM).ploopWord},

	// text
	{"PARSE", 0, (*VM).parseWord},
	{"PARSE-NAME", 0, (*VM).parseNameWord},
	{"WORD", 0, (*VM).wordWord},
	{"COUNT", 0, (*VM).count},
	{"COMPARE", 0, (*VM).compare},
	{"FIND", 0, (*VM).findWord},
	{">NUMBER", 0, (*VM).toNumber},
	{">UPPERCASE", 0, (*VM).toUppercase},
	{"CHAR", 0, (*VM).char},
	{"[CHAR]", compileOnly, (*VM).bracketChar},
	{"BL", 0, constant(' ')},
	{"(", flagImmediate, (*VM).paren},
	{"\\", flagImmediate, (*VM).backslash},
	{`S"`, flagImmediate, (*VM).sQuote},
	{`."`, flagImmediate, (*VM).dotQuote},

	// output
	{"EMIT", 0, (*VM).emitWord},
	{"TYPE", 0, (*VM).typeWord},
	{"CR", 0, (*VM).cr},
	{"SPACE", 0, (*VM).space},
	{"SPACES", 0, (*VM).spaces},
	{".", 0, (*VM).dot},
	{".S", 0, (*VM).dotS},
	{"PAGE", 0, (*VM).page},
	{"WORDS", 0, (*VM).words},
}

// compileBuiltins defines the runtime words that compiled code refers to,
// then every primitive.
func (vm *VM) compileBuiltins() error {
	const internal = flagHidden | flagNoInterp
	for _, rt := range []struct {
		slot  *xt
		name  string
		flags wordFlags
		code  func(vm *VM, pfa uint) error
	}{
		{&vm.rt.lit, "(LIT)", internal, (*VM).lit},
		{&vm.rt.branch, "(BRANCH)", internal, (*VM).branchAlways},
		{&vm.rt.zbranch, "(0BRANCH)", internal, (*VM).branchZero},
		{&vm.rt.exit, "EXIT", internal, (*VM).exit},
		{&vm.rt.do, "(DO)", internal, (*VM).do},
		{&vm.rt.qdo, "(?DO)", internal, (*VM).qdo},
		{&vm.rt.loop, "(LOOP)", internal, (*VM).loop},
		{&vm.rt.ploop, "(+LOOP)", internal, (*VM).ploop},
		{&vm.rt.unloop, "UNLOOP", flagNoInterp, (*VM).unloop},
		{&vm.rt.slit, "(SLIT)", internal, (*VM).slit},
		{&vm.rt.docreate, "(DOCREATE)", internal, (*VM).doCreate},
		{&vm.rt.doconst, "(DOCONST)", internal, (*VM).doConst},
		{&vm.rt.dovalue, "(DOVALUE)", internal, (*VM).doConst},
	} {
		x, err := vm.defineNative(rt.name, rt.flags, rt.code)
		if err != nil {
			return err
		}
		*rt.slot = x
	}

	for _, prim := range primitives {
		code := prim.code
		if _, err := vm.defineNative(prim.name, prim.flags, func(vm *VM, _ uint) error {
			return code(vm)
		}); err != nil {
			return err
		}
	}

	for _, ref := range []struct {
		slot *xt
		name string
	}{
		{&vm.rt.typ, "TYPE"},
		{&vm.rt.store, "!"},
		{&vm.rt.compile, "COMPILE,"},
	} {
		x, _, err := vm.lookup([]byte(ref.name))
		if err != nil {
			return err
		}
		*ref.slot = x
	}
	return nil
}

func binop(op func(a, b int64) int64) func(vm *VM) error {
	return func(vm *VM) error {
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		return vm.dpush(op(a, b))
	}
}

func divop(op func(a, b int64) int64) func(vm *VM) error {
	return func(vm *VM) error {
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		if b == 0 {
			return errDivZero
		}
		return vm.dpush(op(a, b))
	}
}

func cmpop(op func(a, b int64) bool) func(vm *VM) error {
	return binop(func(a, b int64) int64 { return boolFlag(op(a, b)) })
}

func unop(op func(a int64) int64) func(vm *VM) error {
	return func(vm *VM) error {
		a, err := vm.dpop()
		if err != nil {
			return err
		}
		return vm.dpush(op(a))
	}
}

func constant(val int64) func(vm *VM) error {
	return func(vm *VM) error { return vm.dpush(val) }
}

// floorDiv rounds the quotient toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// /MOD ( a b -- rem quot )
func (vm *VM) divMod() error {
	a, b, err := vm.pop2()
	if err != nil {
		return err
	}
	if b == 0 {
		return errDivZero
	}
	q := floorDiv(a, b)
	return vm.dpushAll(a-q*b, q)
}

// DUP ( a -- a a )
func (vm *VM) dup() error {
	a, err := vm.pick(dataStack, 0)
	if err != nil {
		return err
	}
	return vm.dpush(a)
}

// DROP ( a -- )
func (vm *VM) drop() error {
	_, err := vm.dpop()
	return err
}

// SWAP ( a b -- b a )
func (vm *VM) swap() error {
	a, b, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.dpushAll(b, a)
}

// OVER ( a b -- a b a )
func (vm *VM) over() error {
	a, err := vm.pick(dataStack, 1)
	if err != nil {
		return err
	}
	return vm.dpush(a)
}

// ROT ( a b c -- b c a )
func (vm *VM) rot() error {
	a, b, c, err := vm.pop3()
	if err != nil {
		return err
	}
	return vm.dpushAll(b, c, a)
}

// -ROT ( a b c -- c a b )
func (vm *VM) unrot() error {
	a, b, c, err := vm.pop3()
	if err != nil {
		return err
	}
	return vm.dpushAll(c, a, b)
}

// NIP ( a b -- b )
func (vm *VM) nip() error {
	_, b, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.dpush(b)
}

// TUCK ( a b -- b a b )
func (vm *VM) tuck() error {
	a, b, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.dpushAll(b, a, b)
}

// PICK ( xu ... x0 u -- xu ... x0 xu )
func (vm *VM) pickWord() error {
	u, err := vm.dpop()
	if err != nil {
		return err
	}
	x, err := vm.pick(dataStack, u)
	if err != nil {
		return err
	}
	return vm.dpush(x)
}

// ?DUP ( a -- 0 | a a )
func (vm *VM) qdup() error {
	a, err := vm.pick(dataStack, 0)
	if err != nil || a == 0 {
		return err
	}
	return vm.dpush(a)
}

// DEPTH ( -- n )
func (vm *VM) depthWord() error { return vm.dpush(int64(vm.depth(dataStack))) }

// 2DUP ( a b -- a b a b )
func (vm *VM) dup2() error { return vm.copyPair(1) }

// 2OVER ( a b c d -- a b c d a b )
func (vm *VM) over2() error { return vm.copyPair(3) }

func (vm *VM) copyPair(i int64) error {
	a, err := vm.pick(dataStack, i)
	if err != nil {
		return err
	}
	b, err := vm.pick(dataStack, i-1)
	if err != nil {
		return err
	}
	return vm.dpushAll(a, b)
}

// 2DROP ( a b -- )
func (vm *VM) drop2() error {
	_, _, err := vm.pop2()
	return err
}

// 2SWAP ( a b c d -- c d a b )
func (vm *VM) swap2() error {
	c, d, err := vm.pop2()
	if err != nil {
		return err
	}
	a, b, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.dpushAll(c, d, a, b)
}

// >R ( a -- ) ( R: -- a )
func (vm *VM) toR() error {
	a, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.rpush(a)
}

// R> ( -- a ) ( R: a -- )
func (vm *VM) fromR() error {
	a, err := vm.rpop()
	if err != nil {
		return err
	}
	return vm.dpush(a)
}

// R@ ( -- a ) ( R: a -- a )
func (vm *VM) fetchR() error { return vm.copyR(0) }

// I ( -- index ) ( R: limit index -- limit index )
func (vm *VM) loopI() error { return vm.copyR(0) }

// J ( -- index ) ( R: limit index limit' index' -- limit index limit' index' )
func (vm *VM) loopJ() error { return vm.copyR(2) }

func (vm *VM) copyR(i int64) error {
	a, err := vm.rpick(i)
	if err != nil {
		return err
	}
	return vm.dpush(a)
}

// @ ( addr -- x )
func (vm *VM) fetch() error {
	addr, err := vm.dpop()
	if err != nil {
		return err
	}
	x, err := vm.fetchCell(addr)
	if err != nil {
		return err
	}
	return vm.dpush(x)
}

// ! ( x addr -- )
func (vm *VM) store() error {
	x, addr, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.storeCell(addr, x)
}

// +! ( n addr -- )
func (vm *VM) plusStore() error {
	n, addr, err := vm.pop2()
	if err != nil {
		return err
	}
	x, err := vm.fetchCell(addr)
	if err != nil {
		return err
	}
	return vm.storeCell(addr, x+n)
}

// C@ ( addr -- c )
func (vm *VM) cfetch() error {
	addr, err := vm.dpop()
	if err != nil {
		return err
	}
	c, err := vm.fetchByte(addr)
	if err != nil {
		return err
	}
	return vm.dpush(int64(c))
}

// C! ( c addr -- )
func (vm *VM) cstore() error {
	c, addr, err := vm.pop2()
	if err != nil {
		return err
	}
	return vm.storeByte(addr, byte(c))
}

// , ( x -- )
func (vm *VM) commaWord() error {
	x, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.comma(x)
}

// C, ( c -- )
func (vm *VM) ccommaWord() error {
	c, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.ccomma(byte(c))
}

// ALLOT ( n -- )
func (vm *VM) allotWord() error {
	n, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.allot(n)
}

// HERE ( -- addr )
func (vm *VM) hereWord() error { return vm.dpush(vm.here()) }

// CREATE ( "name" -- )
func (vm *VM) createWord() error {
	name, err := vm.parseNameBytes()
	if err != nil {
		return err
	}
	_, err = vm.create(name, vm.rt.docreate, 0)
	return err
}

// VARIABLE ( "name" -- )
func (vm *VM) variable() error {
	if err := vm.createWord(); err != nil {
		return err
	}
	return vm.comma(0)
}

// CONSTANT ( x "name" -- )
func (vm *VM) constantWord() error { return vm.defineData(vm.rt.doconst) }

// VALUE ( x "name" -- )
func (vm *VM) value() error { return vm.defineData(vm.rt.dovalue) }

func (vm *VM) defineData(routine xt) error {
	x, err := vm.dpop()
	if err != nil {
		return err
	}
	name, err := vm.parseNameBytes()
	if err != nil {
		return err
	}
	if _, err := vm.create(name, routine, 0); err != nil {
		return err
	}
	return vm.comma(x)
}

// TO ( x "name" -- )
func (vm *VM) to() error {
	name, err := vm.parseNameBytes()
	if err != nil {
		return err
	}
	x, _, err := vm.lookup(name)
	if err != nil {
		return err
	}
	if x.kind != xtNative || x.code != vm.rt.dovalue.code {
		return errNotValue
	}
	if vm.compiling() {
		if err := vm.compileLit(int64(x.pfa)); err != nil {
			return err
		}
		return vm.compileXT(vm.rt.store)
	}
	val, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.storeCell(int64(x.pfa), val)
}

// IMMEDIATE ( -- )
func (vm *VM) immediate() error {
	return vm.setFlags(vm.load(regLatest), flagImmediate, 0)
}

// HIDE ( "name" -- )
func (vm *VM) hide() error {
	name, err := vm.parseNameBytes()
	if err != nil {
		return err
	}
	entry, err := vm.find(name)
	if err != nil {
		return err
	}
	if entry == 0 {
		return unknownWordError(name)
	}
	return vm.setFlags(entry, flagHidden, 0)
}

// [ ( -- )
func (vm *VM) leftBracket() error {
	vm.stor(regState, flagFalse)
	return nil
}

// ] ( -- )
func (vm *VM) rightBracket() error {
	vm.stor(regState, flagTrue)
	return nil
}

func (vm *VM) parseLookup() (xt, int64, error) {
	name, err := vm.parseNameBytes()
	if err != nil {
		return xt{}, 0, err
	}
	return vm.lookup(name)
}

// ' ( "name" -- xt )
func (vm *VM) tick() error {
	x, _, err := vm.parseLookup()
	if err != nil {
		return err
	}
	return vm.dpush(x.cell())
}

// ['] ( "name" -- )
func (vm *VM) bracketTick() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	x, _, err := vm.parseLookup()
	if err != nil {
		return err
	}
	return vm.compileLit(x.cell())
}

// EXECUTE ( i*x xt -- j*x )
func (vm *VM) executeWord() error {
	val, err := vm.dpop()
	if err != nil {
		return err
	}
	x, err := decodeXT(val)
	if err != nil {
		return err
	}
	return vm.execute(x)
}

// LITERAL ( x -- )
func (vm *VM) literal() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	x, err := vm.dpop()
	if err != nil {
		return err
	}
	return vm.compileLit(x)
}

// COMPILE, ( xt -- )
func (vm *VM) compileComma() error {
	val, err := vm.dpop()
	if err != nil {
		return err
	}
	x, err := decodeXT(val)
	if err != nil {
		return err
	}
	return vm.compileXT(x)
}

// POSTPONE ( "name" -- )
func (vm *VM) postpone() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	x, imm, err := vm.parseLookup()
	if err != nil {
		return err
	}
	if imm == 1 {
		return vm.compileXT(x)
	}
	if err := vm.compileLit(x.cell()); err != nil {
		return err
	}
	return vm.compileXT(vm.rt.compile)
}

// RECURSE ( -- )
func (vm *VM) recurse() error {
	if err := vm.compileOnly(); err != nil {
		return err
	}
	x, err := vm.entryXT(vm.load(regLatest))
	if err != nil {
		return err
	}
	return vm.compileXT(x)
}
