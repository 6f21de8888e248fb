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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
func TestEncode62Bijective(t *testing.T) {

	seen := map[byte]bool{}
	for v := 0; v < 64; v++ {
		d := Encode62[v]
		assert.False(t, seen[d], "disk byte 0x%02x assigned twice", d)
		seen[d] = true

		dec, ok := Decode62(d)
		require.True(t, ok)
		assert.Equal(t, byte(v), dec)
	}
}

//
func TestEncode53Bijective(t *testing.T) {

	seen := map[byte]bool{}
	for v := 0; v < 32; v++ {
		d := Encode53[v]
		assert.False(t, seen[d], "disk byte 0x%02x assigned twice", d)
		seen[d] = true

		dec, ok := Decode53(d)
		require.True(t, ok)
		assert.Equal(t, byte(v), dec)
	}
}

// all legal disk bytes have the high bit set, so the controller latch can
// align on them
func TestDiskBytesHaveHighBit(t *testing.T) {
	for v := 0; v < 64; v++ {
		assert.NotZero(t, Encode62[v]&0x80, "0x%02x", Encode62[v])
	}
	for v := 0; v < 32; v++ {
		assert.NotZero(t, Encode53[v]&0x80, "0x%02x", Encode53[v])
	}
}

//
func TestDecodeRejectsIllegalBytes(t *testing.T) {

	_, ok := Decode62(0x00)
	assert.False(t, ok)
	_, ok = Decode62(0xd5)
	assert.False(t, ok)
	_, ok = Decode62(0xaa)
	assert.False(t, ok)

	_, ok = Decode53(0x00)
	assert.False(t, ok)
	_, ok = Decode53(0xd5)
	assert.False(t, ok)
}
