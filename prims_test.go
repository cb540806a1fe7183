package main

import "testing"

func TestVM_arithmetic(t *testing.T) {
	vmTestCases{
		vmTest("add").withLines("2 3 +").expectStack(5),
		vmTest("sub").withLines("2 3 -").expectStack(-1),
		vmTest("mul").withLines("-4 3 *").expectStack(-12),
		vmTest("div").withLines("7 2 /").expectStack(3),
		vmTest("div floors").withLines("-7 2 /").expectStack(-4),
		vmTest("div floors negative divisor").withLines("7 -2 /").expectStack(-4),
		vmTest("div exact negative").withLines("-8 2 /").expectStack(-4),
		vmTest("mod").withLines("7 3 MOD -7 3 MOD").expectStack(1, -1),
		vmTest("divmod").withLines("7 2 /MOD").expectStack(1, 3),
		vmTest("divmod floors").withLines("-7 2 /MOD").expectStack(1, -4),
		vmTest("divmod direct").apply(withVMStack(7, 3), expectVMStack(1, 2)).do((*VM).divMod),
		vmTest("div by zero").withLines("1 0 /").expectError(ErrArithmetic).expectStack(),
		vmTest("mod by zero").withLines("1 0 MOD").expectError(ErrArithmetic),
		vmTest("divmod by zero").withLines("1 0 /MOD").expectError(ErrArithmetic),
		vmTest("negate abs").withLines("5 NEGATE -3 ABS").expectStack(-5, 3),
		vmTest("min max").withLines("3 7 MIN 3 7 MAX -1 -2 MIN").expectStack(3, 7, -2),
		vmTest("incr decr").withLines("1 1+ 1 1-").expectStack(2, 0),
		vmTest("shifts").withLines("3 2* -8 2/ 1 4 LSHIFT 256 4 RSHIFT -1 60 RSHIFT").
			expectStack(6, -4, 16, 16, 15),
		vmTest("bitwise").withLines("12 10 AND 12 10 OR 12 10 XOR 0 INVERT").
			expectStack(8, 14, 6, -1),
		vmTest("overflow wraps").withLines("9223372036854775807 1 +").
			expectStack(-9223372036854775808),
		vmTest("cells").withLines("3 CELLS 0 CELL+").expectStack(24, 8),
		vmTest("aligned").withLines("1 ALIGNED 8 ALIGNED 9 ALIGNED").expectStack(8, 8, 16),
		vmTest("underflow").withLines("1 +").expectError(ErrStack),
	}.run(t)
}

func TestVM_comparison(t *testing.T) {
	vmTestCases{
		vmTest("equal").withLines("1 1 = 1 2 =").expectStack(-1, 0),
		vmTest("not equal").withLines("1 1 <> 1 2 <>").expectStack(0, -1),
		vmTest("less").withLines("1 2 < 2 1 < -1 1 <").expectStack(-1, 0, -1),
		vmTest("greater").withLines("1 2 > 2 1 >").expectStack(0, -1),
		vmTest("unsigned less").withLines("-1 1 U< 1 -1 U<").expectStack(0, -1),
		vmTest("zero compares").withLines("0 0= 5 0= -5 0< 5 0< 5 0> 0 0>").
			expectStack(-1, 0, -1, 0, -1, 0),
		vmTest("true false").withLines("TRUE FALSE").expectStack(-1, 0),
	}.run(t)
}

func TestVM_stackOps(t *testing.T) {
	vmTestCases{
		vmTest("dup").withStack(1).do((*VM).dup).expectStack(1, 1),
		vmTest("drop").withStack(1, 2).do((*VM).drop).expectStack(1),
		vmTest("swap").withStack(1, 2).do((*VM).swap).expectStack(2, 1),
		vmTest("over").withStack(1, 2).do((*VM).over).expectStack(1, 2, 1),
		vmTest("rot").withStack(1, 2, 3).do((*VM).rot).expectStack(2, 3, 1),
		vmTest("unrot").withStack(1, 2, 3).do((*VM).unrot).expectStack(3, 1, 2),
		vmTest("nip").withStack(1, 2).do((*VM).nip).expectStack(2),
		vmTest("tuck").withStack(1, 2).do((*VM).tuck).expectStack(2, 1, 2),
		vmTest("pick").withStack(10, 20, 30, 2).do((*VM).pickWord).expectStack(10, 20, 30, 10),
		vmTest("qdup zero").withStack(0).do((*VM).qdup).expectStack(0),
		vmTest("qdup nonzero").withStack(3).do((*VM).qdup).expectStack(3, 3),
		vmTest("2dup").withStack(1, 2).do((*VM).dup2).expectStack(1, 2, 1, 2),
		vmTest("2drop").withStack(1, 2, 3).do((*VM).drop2).expectStack(1),
		vmTest("2swap").withStack(1, 2, 3, 4).do((*VM).swap2).expectStack(3, 4, 1, 2),
		vmTest("2over").withStack(1, 2, 3, 4).do((*VM).over2).expectStack(1, 2, 3, 4, 1, 2),
		vmTest("depth").withStack(7, 7).do((*VM).depthWord).expectStack(7, 7, 2),
		vmTest("dup empty").do((*VM).dup).expectError(ErrStack),
		vmTest("rot short").withStack(1, 2).do((*VM).rot).expectError(ErrStack),

		vmTest("to r").withStack(1, 2).do((*VM).toR).expectStack(1).expectRStack(2),
		vmTest("from r").apply(withVMRStack(5), expectVMStack(5), expectVMRStack()).do((*VM).fromR),
		vmTest("fetch r").withRStack(5).do((*VM).fetchR).expectStack(5).expectRStack(5),
		vmTest("from r empty").do((*VM).fromR).expectError(ErrStack),
		vmTest("loop indices").withRStack(10, 1, 20, 2).do((*VM).loopI, (*VM).loopJ).
			expectStack(2, 1),
	}.run(t)
}

func TestVM_memoryOps(t *testing.T) {
	vmTestCases{
		vmTest("fetch store").
			withLines("HERE 2 CELLS ALLOT", "DUP 42 SWAP !", "@").
			expectStack(42),
		vmTest("byte store").
			withLines("HERE 1 ALLOT", "DUP 300 SWAP C!", "C@").
			expectStack(44),
		vmTest("unaligned fetch").
			withLines("HERE 1+ @").
			expectError(ErrAlignment).
			expectStack(),
		vmTest("unaligned store").
			withLines("1 10001 !").
			expectError(ErrAlignment),
		vmTest("fetch out of range").
			withLines("64000 @").
			expectError(ErrAddressRange),
		vmTest("negative address").
			withLines("-8 @").
			expectError(ErrAddressRange),
		vmTest("byte out of range").
			withLines("64000 C@").
			expectError(ErrAddressRange),
		vmTest("last byte").
			withLines("65 63999 C! 63999 C@").
			expectStack(65),
		vmTest("registers are memory").
			withLines("HERE 24 @ =").
			expectStack(-1),
		vmTest("mem at").
			apply(
				withVMMemAt(30000, 1, 2, 3),
				withVMLines("30016 @"),
				expectVMStack(3),
				expectVMMemAt(30000, 1, 2, 3),
			),
	}.run(t)
}

func TestVM_compiler(t *testing.T) {
	vmTestCases{
		vmTest("postpone immediate").
			withLines(
				": my-if POSTPONE IF ; IMMEDIATE",
				": my-then POSTPONE THEN ; IMMEDIATE",
				": t my-if 1 ELSE 2 my-then ;",
				"0 t 1 t",
			).
			expectStack(2, 1),

		vmTest("postpone non immediate").
			withLines(
				": compile-dup POSTPONE DUP ; IMMEDIATE",
				": t compile-dup * ;",
				"7 t",
			).
			expectStack(49),

		vmTest("postpone interpreting").
			withLines("POSTPONE DUP").
			expectError(ErrCompileContext),

		vmTest("immediate word runs while compiling").
			withLines(
				": seven 7 ; IMMEDIATE",
				": t seven ;",
			).
			expectStack(7),

		vmTest("bracket char").
			withLines(": t [CHAR] x ;", "t CHAR yes").
			expectStack('x', 'y'),

		vmTest("recurse fib").
			withLines(
				": fib DUP 2 < 0= IF DUP 1- RECURSE SWAP 2 - RECURSE + THEN ;",
				"10 fib",
			).
			expectStack(55),
	}.run(t)
}
