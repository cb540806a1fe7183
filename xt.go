package main

// xt is a decoded execution token: either a native routine, identified by its
// code address, or a compiled colon definition whose threaded code starts at
// its code address. Both carry a parameter field address.
type xt struct {
	kind xtKind
	code uint
	pfa  uint
}

type xtKind uint8

const (
	xtNative xtKind = iota + 1
	xtCompiled
)

// An xt packs into one cell as kind<<56 | pfa<<28 | code.
const (
	xtFieldBits = 28
	xtFieldMask = 1<<xtFieldBits - 1
	xtKindShift = 2 * xtFieldBits
)

func (x xt) cell() int64 {
	return int64(uint64(x.kind)<<xtKindShift |
		uint64(x.pfa&xtFieldMask)<<xtFieldBits |
		uint64(x.code&xtFieldMask))
}

func decodeXT(val int64) (xt, error) {
	u := uint64(val)
	x := xt{
		kind: xtKind(u >> xtKindShift),
		pfa:  uint(u >> xtFieldBits & xtFieldMask),
		code: uint(u & xtFieldMask),
	}
	ok := x.pfa < memSize
	switch x.kind {
	case xtNative:
		ok = ok && x.code >= nativeBase && x.code < nativeBase+nativeMax
	case xtCompiled:
		ok = ok && x.code >= dataBase && x.code < strBase
	default:
		ok = false
	}
	if !ok {
		return xt{}, xtError(val)
	}
	return x, nil
}
