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

package gcr

import (
	"github.com/xelalexv/nibworks/pkg/floppy/bits"
)

const sectorSize525 = 256
const sectorSize35 = 524

// 86 auxiliary six-bit values + 256 + 1 checksum
const encodedSize62 = 343

// 410 five-bit groups + 1 checksum
const encodedSize53 = 411

// 699 payload six-bit values + 4 checksum
const encodedSize35 = 703

const auxSize62 = 86

/*
	The 256 byte 6&2 layout splits each payload byte into its top six bits and
	a two-bit remainder. Remainders are gathered three to an auxiliary six-bit
	value, with byte indices walking down from 0x01, 0xab and 0x55. The
	auxiliary block is emitted in descending order, then the top-bit block in
	ascending order, each value XOR-chained with its predecessor so the final
	extra disk byte doubles as the checksum.
*/
func encodeData62(cur *bits.Cursor, buf []byte, seed byte) error {

	var temp [encodedSize62 - 1]byte
	for ix := 0; ix < sectorSize525; ix++ {
		temp[ix] = buf[ix] >> 2
	}
	for ix := 0; ix < auxSize62; ix++ {
		hi := buf[(0x01-ix)&0xff]
		med := buf[(0xab-ix)&0xff]
		low := buf[(0x55-ix)&0xff]
		temp[sectorSize525+ix] = (hi&1)<<5 | (hi&2)<<3 |
			(med&1)<<3 | (med&2)<<1 | (low&1)<<1 | (low&2)>>1
	}

	last := seed & 0x3f
	emit := func(v byte) error {
		err := cur.WriteByte(Encode62[v^last])
		last = v
		return err
	}

	for ix := len(temp) - 1; ix >= sectorSize525; ix-- {
		if err := emit(temp[ix]); err != nil {
			return err
		}
	}
	for ix := 0; ix < sectorSize525; ix++ {
		if err := emit(temp[ix]); err != nil {
			return err
		}
	}
	return cur.WriteByte(Encode62[last])
}

//
func decodeData62(cur *bits.Cursor, buf []byte, seed byte) bool {

	var temp [encodedSize62 - 1]byte
	last := seed & 0x3f

	take := func() (byte, bool) {
		d, err := cur.ReadLatch()
		if err != nil {
			return 0, false
		}
		v, ok := Decode62(d)
		if !ok {
			return 0, false
		}
		v ^= last
		last = v
		return v, true
	}

	for ix := len(temp) - 1; ix >= sectorSize525; ix-- {
		v, ok := take()
		if !ok {
			return false
		}
		temp[ix] = v
	}
	for ix := 0; ix < sectorSize525; ix++ {
		v, ok := take()
		if !ok {
			return false
		}
		temp[ix] = v
	}

	for ix := 0; ix < sectorSize525; ix++ {
		buf[ix] = temp[ix] << 2
	}
	for ix := 0; ix < auxSize62; ix++ {
		a := temp[sectorSize525+ix]
		buf[(0x01-ix)&0xff] |= ((a >> 5) & 1) | ((a>>4)&1)<<1
		buf[(0xab-ix)&0xff] |= ((a >> 3) & 1) | ((a>>2)&1)<<1
		buf[(0x55-ix)&0xff] |= ((a >> 1) & 1) | (a&1)<<1
	}

	// trailing disk byte carries the chain state
	d, err := cur.ReadLatch()
	if err != nil {
		return false
	}
	v, ok := Decode62(d)
	return ok && v == last
}

/*
	The 5&3 layout streams the 2048 payload bits into 410 five-bit groups,
	zero-padded at the tail, five plaintext bytes thus spreading over eight
	disk bytes. Groups are XOR-chained like the 6&2 case, with one trailing
	checksum disk byte.
*/
func encodeData53(cur *bits.Cursor, buf []byte, seed byte) error {

	last := seed & 0x1f
	bit := 0

	for g := 0; g < encodedSize53-1; g++ {
		var v byte
		for k := 0; k < 5; k++ {
			v <<= 1
			if bit < 8*sectorSize525 {
				if buf[bit>>3]&(0x80>>uint(bit&7)) != 0 {
					v |= 1
				}
				bit++
			}
		}
		if err := cur.WriteByte(Encode53[v^last]); err != nil {
			return err
		}
		last = v
	}
	return cur.WriteByte(Encode53[last])
}

//
func decodeData53(cur *bits.Cursor, buf []byte, seed byte) bool {

	for ix := range buf {
		buf[ix] = 0
	}

	last := seed & 0x1f
	bit := 0

	for g := 0; g < encodedSize53-1; g++ {
		d, err := cur.ReadLatch()
		if err != nil {
			return false
		}
		v, ok := Decode53(d)
		if !ok {
			return false
		}
		v ^= last
		last = v
		for k := 4; k >= 0; k-- {
			if bit < 8*sectorSize525 {
				if v&(1<<uint(k)) != 0 {
					buf[bit>>3] |= 0x80 >> uint(bit&7)
				}
				bit++
			}
		}
	}

	d, err := cur.ReadLatch()
	if err != nil {
		return false
	}
	v, ok := Decode53(d)
	return ok && v == last
}

/*
	The 524 byte 3.5" layout packs plaintext in three-byte groups of four
	six-bit values, the final two bytes in a short group of three. A three
	byte checksum, kept as rotating XOR accumulators with carry wrap-around,
	follows as one more group.
*/
func encodeData35(cur *bits.Cursor, buf []byte, seed byte) error {

	write3 := func(b0, b1, b2 byte, short bool) error {
		if err := cur.WriteByte(Encode62[b0>>2]); err != nil {
			return err
		}
		if err := cur.WriteByte(Encode62[(b0&3)<<4|b1>>4]); err != nil {
			return err
		}
		if err := cur.WriteByte(Encode62[(b1&0xf)<<2|b2>>6]); err != nil {
			return err
		}
		if short {
			return nil
		}
		return cur.WriteByte(Encode62[b2&0x3f])
	}

	for ix := 0; ix+3 <= sectorSize35; ix += 3 {
		if err := write3(buf[ix], buf[ix+1], buf[ix+2], false); err != nil {
			return err
		}
	}
	if err := write3(buf[sectorSize35-2], buf[sectorSize35-1],
		0, true); err != nil {
		return err
	}

	chk := checksum35(buf, seed)
	return write3(chk[0], chk[1], chk[2], false)
}

//
func decodeData35(cur *bits.Cursor, buf []byte, seed byte) bool {

	take := func() (byte, bool) {
		d, err := cur.ReadLatch()
		if err != nil {
			return 0, false
		}
		return Decode62(d)
	}

	read3 := func(short bool) (byte, byte, byte, bool) {
		v0, ok := take()
		if !ok {
			return 0, 0, 0, false
		}
		v1, ok := take()
		if !ok {
			return 0, 0, 0, false
		}
		v2, ok := take()
		if !ok {
			return 0, 0, 0, false
		}
		var v3 byte
		if !short {
			if v3, ok = take(); !ok {
				return 0, 0, 0, false
			}
		}
		return v0<<2 | v1>>4, (v1&0xf)<<4 | v2>>2, (v2&3)<<6 | v3, true
	}

	for ix := 0; ix+3 <= sectorSize35; ix += 3 {
		b0, b1, b2, ok := read3(false)
		if !ok {
			return false
		}
		buf[ix], buf[ix+1], buf[ix+2] = b0, b1, b2
	}
	b0, b1, _, ok := read3(true)
	if !ok {
		return false
	}
	buf[sectorSize35-2], buf[sectorSize35-1] = b0, b1

	c0, c1, c2, ok := read3(false)
	if !ok {
		return false
	}
	chk := checksum35(buf, seed)
	return c0 == chk[0] && c1 == chk[1] && c2 == chk[2]
}

//
func checksum35(buf []byte, seed byte) [3]byte {
	c := [3]byte{seed, seed, seed}
	for ix, b := range buf {
		k := ix % 3
		c[k] = c[k]<<1 | c[k]>>7
		c[k] ^= b
	}
	return c
}

// odd-even 4&4 sub-encoding used by 5.25" address fields
func writeOddEven(cur *bits.Cursor, v byte) error {
	if err := cur.WriteByte(0xaa | v>>1); err != nil {
		return err
	}
	return cur.WriteByte(0xaa | v)
}

//
func readOddEven(cur *bits.Cursor) (byte, bool) {
	b0, err := cur.ReadLatch()
	if err != nil {
		return 0, false
	}
	b1, err := cur.ReadLatch()
	if err != nil {
		return 0, false
	}
	return (b0<<1 | 1) & b1, true
}
