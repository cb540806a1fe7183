package mem

import (
	"encoding/binary"
	"fmt"
)

// CellSize is the width in bytes of a cell.
const CellSize = 8

// Image implements a fixed size, byte addressable, memory.
// Cells are stored little-endian and must be loaded or stored at addresses
// aligned to CellSize.
type Image struct {
	buf []byte
}

// NewImage allocates a zeroed image of the given size.
func NewImage(size uint) *Image {
	return &Image{buf: make([]byte, size)}
}

// RangeError indicates that a memory operation, like load or store, fell
// outside of the image.
type RangeError struct {
	Addr uint
	Op   string
}

func (re RangeError) Error() string {
	return fmt.Sprintf("address out of range by %v @%v", re.Op, re.Addr)
}

// AlignError indicates that a cell operation used an unaligned address.
type AlignError struct {
	Addr uint
	Op   string
}

func (ae AlignError) Error() string {
	return fmt.Sprintf("unaligned address for %v @%v", ae.Op, ae.Addr)
}

// Size returns the number of bytes in the image.
func (m *Image) Size() uint { return uint(len(m.buf)) }

// Aligned returns addr rounded up to the next cell boundary.
func Aligned(addr uint) uint {
	return (addr + CellSize - 1) / CellSize * CellSize
}

// LoadByte returns the byte at addr.
func (m *Image) LoadByte(addr uint) (byte, error) {
	if err := m.checkRange(addr, 1, "load"); err != nil {
		return 0, err
	}
	return m.buf[addr], nil
}

// StorByte sets the byte at addr.
func (m *Image) StorByte(addr uint, b byte) error {
	if err := m.checkRange(addr, 1, "stor"); err != nil {
		return err
	}
	m.buf[addr] = b
	return nil
}

// LoadCell returns the cell at addr.
func (m *Image) LoadCell(addr uint) (int64, error) {
	if err := m.checkCell(addr, "load"); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(m.buf[addr:])), nil
}

// StorCell sets the cell at addr.
func (m *Image) StorCell(addr uint, val int64) error {
	if err := m.checkCell(addr, "stor"); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.buf[addr:], uint64(val))
	return nil
}

// LoadInto reads len(buf) bytes from memory starting at addr.
// Returns an error if the range exceeds the image; no partial load is done.
func (m *Image) LoadInto(addr uint, buf []byte) error {
	if err := m.checkRange(addr, uint(len(buf)), "load"); err != nil {
		return err
	}
	copy(buf, m.buf[addr:])
	return nil
}

// Stor writes bytes into memory starting at addr.
// Returns an error if the range exceeds the image; no partial store is done.
func (m *Image) Stor(addr uint, p []byte) error {
	if err := m.checkRange(addr, uint(len(p)), "stor"); err != nil {
		return err
	}
	copy(m.buf[addr:], p)
	return nil
}

func (m *Image) checkCell(addr uint, op string) error {
	if err := m.checkRange(addr, CellSize, op); err != nil {
		return err
	}
	if addr%CellSize != 0 {
		return AlignError{addr, op}
	}
	return nil
}

func (m *Image) checkRange(addr, n uint, op string) error {
	if size := uint(len(m.buf)); addr > size || n > size-addr {
		return RangeError{addr, op}
	}
	return nil
}
