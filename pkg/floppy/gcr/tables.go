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

/*
	The disk byte translation tables are the historical assignments and must
	never be recomputed: data written with any other assignment is unreadable
	on original hardware and by other tools.

	A legal 6&2 disk byte has the high bit set, at most one consecutive zero
	bit among bits 0-6, and at least one pair of adjacent one bits below
	bit 7. A legal 5&3 disk byte has no consecutive zero bits at all.
*/

// Encode62 maps a six-bit value to its disk byte.
var Encode62 = [64]byte{
	0x96, 0x97, 0x9a, 0x9b, 0x9d, 0x9e, 0x9f, 0xa6,
	0xa7, 0xab, 0xac, 0xad, 0xae, 0xaf, 0xb2, 0xb3,
	0xb4, 0xb5, 0xb6, 0xb7, 0xb9, 0xba, 0xbb, 0xbc,
	0xbd, 0xbe, 0xbf, 0xcb, 0xcd, 0xce, 0xcf, 0xd3,
	0xd6, 0xd7, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde,
	0xdf, 0xe5, 0xe6, 0xe7, 0xe9, 0xea, 0xeb, 0xec,
	0xed, 0xee, 0xef, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6,
	0xf7, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff,
}

// Encode53 maps a five-bit value to its disk byte.
var Encode53 = [32]byte{
	0xab, 0xad, 0xae, 0xaf, 0xb5, 0xb6, 0xb7, 0xba,
	0xbb, 0xbd, 0xbe, 0xbf, 0xd6, 0xd7, 0xda, 0xdb,
	0xdd, 0xde, 0xdf, 0xea, 0xeb, 0xed, 0xee, 0xef,
	0xf5, 0xf6, 0xf7, 0xfa, 0xfb, 0xfd, 0xfe, 0xff,
}

const invalidDiskByte = 0xff

var decode62 [256]byte
var decode53 [256]byte

func init() {
	for ix := range decode62 {
		decode62[ix] = invalidDiskByte
		decode53[ix] = invalidDiskByte
	}
	for v, d := range Encode62 {
		decode62[d] = byte(v)
	}
	for v, d := range Encode53 {
		decode53[d] = byte(v)
	}
}

// Decode62 returns the six-bit value for a disk byte, false if illegal.
func Decode62(d byte) (byte, bool) {
	v := decode62[d]
	return v, v != invalidDiskByte
}

// Decode53 returns the five-bit value for a disk byte, false if illegal.
func Decode53(d byte) (byte, bool) {
	v := decode53[d]
	return v, v != invalidDiskByte
}
