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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
func TestNewCursorValidation(t *testing.T) {

	buf := make([]byte, 4)

	_, err := NewCursor(buf, 0, 0, false, nil)
	assert.Error(t, err)

	_, err = NewCursor(buf, -1, 8, false, nil)
	assert.Error(t, err)

	_, err = NewCursor(buf, 0, 33, false, nil)
	assert.Error(t, err)

	_, err = NewCursor(buf, 8, 25, false, nil)
	assert.Error(t, err)

	cur, err := NewCursor(buf, 8, 24, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 24, cur.BitCount())
}

//
func TestReadByteAndWraparound(t *testing.T) {

	cur, err := NewCursor([]byte{0xa5, 0x3c}, 0, 16, true, nil)
	require.NoError(t, err)

	assert.Equal(t, byte(0xa5), cur.ReadByte())
	assert.Equal(t, byte(0x3c), cur.ReadByte())
	// position wrapped back to the start
	assert.Equal(t, 0, cur.Position())
	assert.Equal(t, byte(0xa5), cur.ReadByte())
}

//
func TestReadBitUnaligned(t *testing.T) {

	// window starts mid-byte
	cur, err := NewCursor([]byte{0x0f, 0xf0}, 4, 8, true, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), cur.ReadByte())
}

//
func TestSetPosition(t *testing.T) {

	cur, err := NewCursor(make([]byte, 8), 0, 64, true, nil)
	require.NoError(t, err)

	cur.SetPosition(70)
	assert.Equal(t, 6, cur.Position())

	cur.SetPosition(-2)
	assert.Equal(t, 62, cur.Position())
}

//
func TestReadLatch(t *testing.T) {

	// two zero bits of slip, then 0xd5; the latch must re-align
	cur, err := NewCursor([]byte{0x35, 0x40, 0x00, 0x00}, 0, 32, true, nil)
	require.NoError(t, err)

	v, err := cur.ReadLatch()
	require.NoError(t, err)
	assert.Equal(t, byte(0xd5), v)
}

//
func TestReadLatchMalformed(t *testing.T) {

	cur, err := NewCursor(make([]byte, 16), 0, 128, true, nil)
	require.NoError(t, err)

	_, err = cur.ReadLatch()
	assert.Equal(t, ErrMalformedStream, err)

	// the failed latch consumed exactly the latch window
	assert.Equal(t, 32, cur.Position())
}

//
func TestWriteByteRoundTrip(t *testing.T) {

	buf := make([]byte, 8)
	cur, err := NewCursor(buf, 0, 64, false, nil)
	require.NoError(t, err)

	for _, v := range []byte{0xd5, 0xaa, 0x96, 0xff} {
		require.NoError(t, cur.WriteByte(v))
	}

	cur.SetPosition(0)
	for _, v := range []byte{0xd5, 0xaa, 0x96, 0xff} {
		got, err := cur.ReadLatch()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

//
func TestReadOnly(t *testing.T) {

	cur, err := NewCursor(make([]byte, 8), 0, 64, true, nil)
	require.NoError(t, err)

	assert.True(t, cur.IsReadOnly())
	assert.Equal(t, ErrReadOnly, cur.WriteBit(1))
	assert.Equal(t, ErrReadOnly, cur.WriteByte(0xff))
	assert.False(t, cur.IsDirty())
}

//
func TestDirtySharedAcrossClones(t *testing.T) {

	dirty := false
	cur, err := NewCursor(make([]byte, 8), 0, 64, false, &dirty)
	require.NoError(t, err)

	dup := cur.Clone()
	assert.False(t, cur.IsDirty())

	require.NoError(t, dup.WriteByte(0xff))
	assert.True(t, cur.IsDirty())
	assert.True(t, dirty)

	cur.ClearDirty()
	assert.False(t, dup.IsDirty())
	assert.False(t, dirty)
}

//
func TestCloneIndependentPosition(t *testing.T) {

	cur, err := NewCursor([]byte{0xff, 0x00}, 0, 16, false, nil)
	require.NoError(t, err)

	dup := cur.Clone()
	dup.SetPosition(8)

	assert.Equal(t, 0, cur.Position())
	assert.Equal(t, byte(0xff), cur.ReadByte())
	assert.Equal(t, byte(0x00), dup.ReadByte())

	// clones share the underlying buffer
	dup.SetPosition(8)
	require.NoError(t, dup.WriteByte(0x5a))
	cur.SetPosition(8)
	assert.Equal(t, byte(0x5a), cur.ReadByte())
}
