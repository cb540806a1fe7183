package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_decodeXT(t *testing.T) {
	for _, x := range []xt{
		{kind: xtNative, code: nativeBase, pfa: dataBase + hdrSize},
		{kind: xtNative, code: nativeBase + nativeMax - 1, pfa: 12345},
		{kind: xtCompiled, code: dataBase + 4096, pfa: dataBase + 4096},
		{kind: xtCompiled, code: strBase - cellSize, pfa: strBase - cellSize},
	} {
		got, err := decodeXT(x.cell())
		if assert.NoError(t, err, "decoding %+v", x) {
			assert.Equal(t, x, got)
		}
	}

	for _, val := range []int64{
		0,
		-1,
		xt{kind: xtNative, code: nativeBase + nativeMax}.cell(),
		xt{kind: xtNative, code: dataBase}.cell(),
		xt{kind: xtCompiled, code: nativeBase}.cell(),
		xt{kind: xtCompiled, code: strBase}.cell(),
		xt{kind: 3, code: dataBase}.cell(),
	} {
		_, err := decodeXT(val)
		assert.True(t, errors.Is(err, ErrAddressRange), "expected %#x to be rejected, got %v", val, err)
	}
}

func TestVM_xts(t *testing.T) {
	vmTestCases{
		vmTest("tick execute").
			withLines("3 ' DUP EXECUTE").
			expectStack(3, 3),

		vmTest("tick compiled").
			withLines(": sq DUP * ;", "4 ' sq EXECUTE").
			expectStack(16),

		vmTest("bracket tick").
			withLines(": t ['] 1+ EXECUTE ;", "41 t").
			expectStack(42),

		vmTest("execute garbage").
			withLines("12345 EXECUTE").
			expectError(ErrAddressRange),

		vmTest("execute data").
			withLines("HERE EXECUTE").
			expectError(ErrAddressRange),

		vmTest("compile comma").
			withLines(": t [ ' DUP COMPILE, ] ;", "5 t").
			expectStack(5, 5),
	}.run(t)
}
