package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// vmDumper renders the machine state by reading its memory image through
// FetchByte and FetchCell.
type vmDumper struct {
	vm  *VM
	out io.Writer

	// natives includes host routines in the dictionary listing.
	natives bool

	names   map[int64]string
	entries []int64
}

type dumpStack struct {
	label     string
	reg       int64
	base, end int64
}

var dumpStacks = []dumpStack{
	{"data", regS, dstackBase, dstackBase + dstackSize},
	{"return", regR, rstackBase, rstackBase + rstackSize},
	{"control", regCF, cfstackBase, cfstackBase + cfstackSize},
}

var dumpRegs = []struct {
	label string
	reg   int64
}{
	{"HERE", regDS},
	{"STR", regStr},
	{"IP", regIP},
	{"STATE", regState},
	{">IN", regToIn},
	{"#TIB", regNumTIB},
	{"LATEST", regLatest},
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	dump.dumpRegs()
	for _, s := range dumpStacks {
		dump.dumpStack(s)
	}
	dump.scanEntries()
	dump.dumpDict()
}

func (dump *vmDumper) cell(addr int64) int64 {
	val, err := dump.vm.FetchCell(addr)
	if err != nil {
		return 0
	}
	return val
}

func (dump *vmDumper) bytes(addr, n int64) []byte {
	if n < 0 || n > memSize {
		n = 0
	}
	buf := make([]byte, 0, n)
	for i := int64(0); i < n; i++ {
		b, err := dump.vm.FetchByte(addr + i)
		if err != nil {
			break
		}
		buf = append(buf, b)
	}
	return buf
}

func (dump *vmDumper) dumpRegs() {
	var sb strings.Builder
	sb.WriteString(" ")
	for _, r := range dumpRegs {
		fmt.Fprintf(&sb, " %v:%v", r.label, dump.cell(r.reg))
	}
	sb.WriteByte('\n')
	io.WriteString(dump.out, sb.String())
}

func (dump *vmDumper) dumpStack(s dumpStack) {
	p := dump.cell(s.reg)
	if p < s.base || p > s.end {
		fmt.Fprintf(dump.out, "  %v stack: corrupt pointer %v\n", s.label, p)
		return
	}
	vals := make([]int64, 0, (p-s.base)/cellSize)
	for addr := s.base; addr+cellSize <= p; addr += cellSize {
		vals = append(vals, dump.cell(addr))
	}
	fmt.Fprintf(dump.out, "  %v stack: %v\n", s.label, vals)
}

// scanEntries collects dictionary entry addresses, oldest first, and maps
// every entry's xt cell to its name.
func (dump *vmDumper) scanEntries() {
	dump.names = make(map[int64]string)
	dump.entries = dump.entries[:0]
	for entry, limit := dump.cell(regLatest), memSize/hdrSize; entry != 0 && limit > 0; limit-- {
		dump.entries = append(dump.entries, entry)
		dump.names[dump.cell(entry+hdrXT)] = dump.entryName(entry)
		entry = dump.cell(entry + hdrLink)
	}
	sort.Slice(dump.entries, func(i, j int) bool { return dump.entries[i] < dump.entries[j] })
}

func (dump *vmDumper) entryName(entry int64) string {
	n := dump.bytes(entry+hdrLen, 1)
	if len(n) == 0 {
		return "?"
	}
	return string(dump.bytes(entry+hdrName, int64(n[0])))
}

func (dump *vmDumper) dumpDict() {
	fmt.Fprintf(dump.out, "# Dictionary\n")
	var (
		buf     strings.Builder
		natives int
	)
	for i, entry := range dump.entries {
		end := dump.cell(regDS)
		if i+1 < len(dump.entries) {
			end = dump.entries[i+1]
		}
		x, err := decodeXT(dump.cell(entry + hdrXT))
		if err != nil {
			fmt.Fprintf(dump.out, "  @%v %v %v\n", entry, dump.entryName(entry), err)
			continue
		}
		if x.kind == xtNative && !dump.natives && int64(x.pfa) >= end {
			natives++
			continue
		}

		buf.Reset()
		fmt.Fprintf(&buf, "  @%v %v", entry, dump.entryName(entry))
		dump.formatFlags(&buf, entry)
		if x.kind == xtCompiled {
			buf.WriteString(" :")
			dump.formatCode(&buf, int64(x.code), end)
		} else {
			fmt.Fprintf(&buf, " native#%v", x.code-nativeBase)
			for addr := int64(x.pfa); addr+cellSize <= end; addr += cellSize {
				buf.WriteByte(' ')
				buf.WriteString(strconv.FormatInt(dump.cell(addr), 10))
			}
		}
		buf.WriteByte('\n')
		io.WriteString(dump.out, buf.String())
	}
	if natives > 0 {
		fmt.Fprintf(dump.out, "  ... %v native words\n", natives)
	}
}

func (dump *vmDumper) formatFlags(buf *strings.Builder, entry int64) {
	b := dump.bytes(entry+hdrFlags, 1)
	if len(b) == 0 {
		return
	}
	flags := wordFlags(b[0])
	if flags&flagImmediate != 0 {
		buf.WriteString(" immediate")
	}
	if flags&flagHidden != 0 {
		buf.WriteString(" hidden")
	}
	if flags&flagNoInterp != 0 {
		buf.WriteString(" compile-only")
	}
}

// formatCode decodes threaded code, printing the operands of literals,
// branches, and string literals inline.
func (dump *vmDumper) formatCode(buf *strings.Builder, addr, end int64) {
	for addr+cellSize <= end {
		val := dump.cell(addr)
		addr += cellSize
		name, known := dump.names[val]
		if !known {
			fmt.Fprintf(buf, " %v", val)
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(name)
		switch name {
		case "(LIT)":
			fmt.Fprintf(buf, " %v", dump.cell(addr))
			addr += cellSize
		case "(BRANCH)", "(0BRANCH)", "(DO)", "(?DO)", "(LOOP)", "(+LOOP)":
			fmt.Fprintf(buf, " @%v", dump.cell(addr))
			addr += cellSize
		case "(SLIT)":
			fmt.Fprintf(buf, " %q", dump.bytes(dump.cell(addr), dump.cell(addr+cellSize)))
			addr += 2 * cellSize
		}
	}
}
