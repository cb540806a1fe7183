package main

import "github.com/jcorbin/memforth/internal/mem"

const cellSize = mem.CellSize

// memory map, all offsets in bytes
const (
	memSize = 64000

	// registers
	regS      = 0  // data stack pointer
	regR      = 8  // return stack pointer
	regCF     = 16 // control flow stack pointer
	regDS     = 24 // data space pointer, HERE
	regStr    = 32 // string field pointer
	regIP     = 40 // instruction pointer
	regState  = 72 // non-zero when compiling
	regToIn   = 80 // >IN
	regNumTIB = 88 // #TIB
	regLatest = 96 // most recent dictionary entry

	tibBase = 120
	tibSize = 256

	dstackBase = 376
	dstackSize = 256

	rstackBase = 632
	rstackSize = 8400

	cfstackBase = 9032
	cfstackSize = 256

	// pod holds the upper cased name being looked up, as a counted string
	podBase = 9288
	podSize = 256

	// wordBase holds the most recently parsed word, as a counted string
	wordBase = 9544
	wordSize = 256

	// native routine code addresses are indices offset by nativeBase
	nativeBase = 9800
	nativeMax  = 200

	dataBase = 10000
	strBase  = 56000
	strEnd   = memSize
)

// dictionary entry header layout
const (
	hdrLen     = 0
	hdrName    = 1
	maxNameLen = 30
	hdrFlags   = 31
	hdrLink    = 32
	hdrXT      = 40
	hdrSize    = 48
)

type wordFlags uint8

const (
	flagImmediate wordFlags = 0x80
	flagHidden    wordFlags = 0x40
	flagNoInterp  wordFlags = 0x20
)

const (
	flagTrue  int64 = -1
	flagFalse int64 = 0
)

func boolFlag(b bool) int64 {
	if b {
		return flagTrue
	}
	return flagFalse
}
