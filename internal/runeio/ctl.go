// Package runeio provides rune reading, and the control character mnemonics
// used for character literals and diagnostics.
package runeio

import (
	"strconv"
	"strings"
)

// c0Names holds the classic ASCII control mnemonics, indexed by code.
var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ControlWords maps upper case control mnemonics like <ESC>, and caret
// forms like ^[, to their codes.
var ControlWords map[string]rune

func init() {
	ControlWords = make(map[string]rune, 2*len(c0Names)+4)
	add := func(name string, r rune) {
		ControlWords["<"+name+">"] = r
		ControlWords[CaretForm(r)] = r
	}
	for code, name := range c0Names {
		add(name, rune(code))
	}
	add("DEL", 0x7f)
	ControlWords["<SP>"] = ' '
}

// CaretForm computes the ^-escaped printable form of a C0 control rune, or
// DEL; it returns the empty string for any other rune.
func CaretForm(r rune) string {
	if (0 <= r && r < 0x20) || r == 0x7f {
		return "^" + string(r^0x40)
	}
	return ""
}

// ParseChar parses a character literal token: either a quoted character like
// 'x' or '\n', or a control mnemonic like <ESC>, <esc>, or ^[.
func ParseChar(token string) (rune, bool) {
	if r, defined := ControlWords[strings.ToUpper(token)]; defined {
		return r, true
	}
	if len(token) < 3 || token[0] != '\'' || token[len(token)-1] != '\'' {
		return 0, false
	}
	r, _, tail, err := strconv.UnquoteChar(token[1:len(token)-1], '\'')
	if err != nil || tail != "" {
		return 0, false
	}
	return r, true
}
