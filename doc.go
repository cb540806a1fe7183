/* Package main: memforth -- a Forth whose whole state is memory

memforth interprets a conventional Forth dialect on a virtual machine whose
registers, stacks, buffers, dictionary, and data space all live in one flat
image of 64,000 bytes. Cells are 8 bytes, little endian, and must be aligned.
Nothing about the running program hides in host data structures: dumping the
image is dumping the machine.

Memory Map

The image is carved into fixed regions:

	     0  registers: S R CF DS STR IP ... STATE >IN #TIB LATEST
	   120  terminal input buffer, 256 bytes
	   376  data stack, 32 cells
	   632  return stack, 1050 cells
	  9032  control flow stack, 32 cells, used only while compiling
	  9288  name lookup buffer
	  9544  parsed word buffer
	  9800  native routine code addresses
	 10000  data space: dictionary entries and their parameter fields
	 56000  string field, holding S" and ." literals
	 64000  end

Stacks grow upward; their pointer registers address the next free cell.

Dictionary

Each entry starts with a 48 byte header: a length byte, up to 30 bytes of upper
cased name, a flags byte (immediate, hidden, compile only), a link to the
previous entry, and the entry's execution token. The parameter field follows.
Lookup walks the links from LATEST, skipping hidden entries, and is case
insensitive.

An execution token packs into one cell as kind<<56 | pfa<<28 | code. Native
tokens name a host routine by its code address; compiled tokens name the first
cell of threaded code.

Threaded Code

A colon definition compiles to a sequence of execution tokens, some followed by
inline operands: (LIT) carries a value, the branch and loop runtimes carry a
target address, and (SLIT) carries a string address and length. Every
definition ends with EXIT.

The inner interpreter pre-increments IP, so entering a definition pushes IP on
the return stack and points IP one cell before the definition's code. EXIT pops
IP back, or clears it once the return stack is empty, ending the run.

Outer Interpreter

Each line is copied into the input buffer and split into white space delimited
words. A word that names a dictionary entry is executed, unless compiling and
the entry is not immediate, in which case its execution token is compiled. Any
other word must parse as a decimal number, or a character literal like 'a' or
<ESC>. A line interpreted without error prints " ok".

Any fault resets the stacks, returns to interpret mode, and prints the offending
word followed by a short diagnostic, e.g. " FOO ?" for an unknown word.

Usage

	memforth [-timeout d] [-trace] [-dump] [-prompt=false] [-history file] [file ...]

Files are interpreted in order, followed by standard input; a terminal gets a
line editing prompt.
*/
package main
