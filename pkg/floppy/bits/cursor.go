/*
   NibWorks - nibble level disk image toolkit
   Copyright (c) 2023, Alexander Vollschwitz

   This file is part of NibWorks.

   NibWorks is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   NibWorks is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with NibWorks. If not, see <http://www.gnu.org/licenses/>.
*/

package bits

import (
	"errors"
	"fmt"
)

// tracks with fewer bits than this are treated as absent rather than scanned
const MinViableTrackBits = 512 * 8

// a latch read gives up after this many bits without seeing a high bit
const maxLatchBits = 32

//
var ErrReadOnly = errors.New("cursor is read only")

//
var ErrMalformedStream = errors.New(
	"malformed stream: no high bit within latch window")

/*
	Cursor is a circular, bit-addressable view over a slice of a byte buffer.
	The window covers [startBit, startBit+bitCount) within the buffer, and the
	read position wraps modulo bitCount. Several cursors may share the same
	buffer; each keeps its own position, while the dirty flag is shared across
	all cursors derived from the same track. Concurrent writers must be
	serialized by the caller.
*/
type Cursor struct {
	buf      []byte
	startBit int
	bitCount int
	pos      int
	readOnly bool
	dirty    *bool
}

//
func NewCursor(
	buf []byte, startBit, bitCount int, readOnly bool, dirty *bool) (
	*Cursor, error) {

	if bitCount <= 0 {
		return nil, fmt.Errorf("invalid bit count: %d", bitCount)
	}
	if startBit < 0 || startBit+bitCount > 8*len(buf) {
		return nil, fmt.Errorf(
			"bit window [%d, %d) exceeds buffer of %d bits",
			startBit, startBit+bitCount, 8*len(buf))
	}
	if dirty == nil {
		dirty = new(bool)
	}

	return &Cursor{
		buf:      buf,
		startBit: startBit,
		bitCount: bitCount,
		readOnly: readOnly,
		dirty:    dirty,
	}, nil
}

//
func (c *Cursor) BitCount() int {
	return c.bitCount
}

//
func (c *Cursor) Position() int {
	return c.pos
}

// SetPosition moves the read position, reducing it into the track window.
func (c *Cursor) SetPosition(p int) {
	p %= c.bitCount
	if p < 0 {
		p += c.bitCount
	}
	c.pos = p
}

//
func (c *Cursor) IsReadOnly() bool {
	return c.readOnly
}

// IsDirty reports whether any cursor sharing this track has written to it.
func (c *Cursor) IsDirty() bool {
	return *c.dirty
}

//
func (c *Cursor) ClearDirty() {
	*c.dirty = false
}

/*
	Clone returns an independent cursor over the same buffer, at the same
	position. Look-ahead scans use clones so they don't disturb the caller's
	bookmark. The dirty flag stays shared.
*/
func (c *Cursor) Clone() *Cursor {
	dup := *c
	return &dup
}

// ReadBit returns the bit at the current position and advances, wrapping.
func (c *Cursor) ReadBit() byte {
	abs := c.startBit + c.pos
	c.pos++
	if c.pos == c.bitCount {
		c.pos = 0
	}
	if c.buf[abs>>3]&(0x80>>uint(abs&7)) != 0 {
		return 1
	}
	return 0
}

// ReadByte reads 8 raw bits, high bit first.
func (c *Cursor) ReadByte() byte {
	var v byte
	for i := 0; i < 8; i++ {
		v = v<<1 | c.ReadBit()
	}
	return v
}

/*
	ReadLatch models the disk controller data latch: bits are shifted in until
	the accumulated byte has its high bit set. This is what naturally skips
	over self-sync bytes and re-aligns to byte boundaries. The read fails with
	ErrMalformedStream if no high bit shows up within the latch window, so
	garbage data cannot stall a scan.
*/
func (c *Cursor) ReadLatch() (byte, error) {
	var v byte
	for i := 0; i < maxLatchBits; i++ {
		v = v<<1 | c.ReadBit()
		if v&0x80 != 0 {
			return v, nil
		}
	}
	return 0, ErrMalformedStream
}

//
func (c *Cursor) WriteBit(b byte) error {
	if c.readOnly {
		return ErrReadOnly
	}
	abs := c.startBit + c.pos
	c.pos++
	if c.pos == c.bitCount {
		c.pos = 0
	}
	mask := byte(0x80 >> uint(abs&7))
	if b != 0 {
		c.buf[abs>>3] |= mask
	} else {
		c.buf[abs>>3] &^= mask
	}
	*c.dirty = true
	return nil
}

// WriteByte writes 8 bits, high bit first.
func (c *Cursor) WriteByte(v byte) error {
	for i := 7; i >= 0; i-- {
		if err := c.WriteBit((v >> uint(i)) & 1); err != nil {
			return err
		}
	}
	return nil
}
