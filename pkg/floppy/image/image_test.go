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

package image

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

//
func TestNibRoundTrip(t *testing.T) {

	img, err := NewBlank525(gcr.DOS33(), 35, 254)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteNib(img, &buf))
	assert.Equal(t, 35*6656, buf.Len())

	dup, err := ReadNib(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 35, dup.TrackCount())

	var again bytes.Buffer
	require.NoError(t, WriteNib(dup, &again))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

//
func TestReadNibRejectsBadSizes(t *testing.T) {

	_, err := ReadNib(bytes.NewReader(make([]byte, 100)))
	assert.Error(t, err)

	// right granularity, wrong track count
	_, err = ReadNib(bytes.NewReader(make([]byte, 10*6656)))
	assert.Error(t, err)
}

//
func TestTrackBitsAbsence(t *testing.T) {

	img, err := NewBlank525(gcr.DOS33(), 35, 254)
	require.NoError(t, err)

	_, ok := img.TrackBits(35, 0)
	assert.False(t, ok)
	_, ok = img.TrackBits(0, 1)
	assert.False(t, ok)
	_, ok = img.TrackBits(-1, 0)
	assert.False(t, ok)

	cur, ok := img.TrackBits(12, 0)
	require.True(t, ok)
	assert.Equal(t, 8*6656, cur.BitCount())
}

//
func TestDirtyTracking(t *testing.T) {

	img, err := NewBlank525(gcr.DOS33(), 35, 254)
	require.NoError(t, err)
	assert.False(t, img.IsDirty())

	codec, err := gcr.NewCodec(gcr.DOS33())
	require.NoError(t, err)
	acc, err := chunk.NewAccessor(img, codec, chunk.Disk525)
	require.NoError(t, err)

	require.NoError(t, acc.WriteSector(
		7, 0, chunk.OrderPhysical, make([]byte, chunk.SectorSize)))
	assert.True(t, img.IsDirty())

	img.ClearDirty()
	assert.False(t, img.IsDirty())
}

//
func TestReadOnlyImage(t *testing.T) {

	img, err := NewBlank525(gcr.DOS33(), 35, 254)
	require.NoError(t, err)
	img.SetReadOnly(true)

	codec, err := gcr.NewCodec(gcr.DOS33())
	require.NoError(t, err)
	acc, err := chunk.NewAccessor(img, codec, chunk.Disk525)
	require.NoError(t, err)

	assert.True(t, acc.IsReadOnly())
	assert.Error(t, acc.WriteSector(
		0, 0, chunk.OrderPhysical, make([]byte, chunk.SectorSize)))
	assert.True(t, acc.TestSector(0, 0, chunk.OrderPhysical))
}

//
func TestNibblize(t *testing.T) {

	// plain sector image in DOS order, every sector uniquely stamped
	data := make([]byte, 35*16*256)
	for t1 := 0; t1 < 35; t1++ {
		for s := 0; s < 16; s++ {
			off := (t1*16 + s) * 256
			for ix := 0; ix < 256; ix++ {
				data[off+ix] = byte(t1 ^ s ^ ix)
			}
		}
	}

	img, err := Nibblize(data, gcr.DOS33(), chunk.OrderDOS)
	require.NoError(t, err)

	codec, err := gcr.NewCodec(gcr.DOS33())
	require.NoError(t, err)
	acc, err := chunk.NewAccessor(img, codec, chunk.Disk525)
	require.NoError(t, err)

	buf := make([]byte, chunk.SectorSize)
	for _, tc := range []struct{ track, sector int }{
		{0, 0}, {0, 15}, {17, 3}, {34, 12},
	} {
		off := (tc.track*16 + tc.sector) * 256
		require.NoError(t,
			acc.ReadSector(tc.track, tc.sector, chunk.OrderDOS, buf))
		assert.Equal(t, data[off:off+256], []byte(buf),
			"track %d sector %d", tc.track, tc.sector)
	}
}

//
func TestNibblizeRejectsBadSize(t *testing.T) {

	_, err := Nibblize(make([]byte, 1000), gcr.DOS33(), chunk.OrderDOS)
	assert.Error(t, err)

	_, err = Nibblize(
		make([]byte, 20*16*256), gcr.DOS33(), chunk.OrderDOS)
	assert.Error(t, err)
}
