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

	"github.com/xelalexv/nibworks/pkg/floppy/bits"
)

// formats one track and returns a writable cursor over it
func formattedTrack(
	t *testing.T, cfg Config, track, side, sectors, volume int) (
	*bits.Cursor, *Codec) {

	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	ft, err := NewFormatter(codec).FormatTrack(track, side, sectors, volume)
	require.NoError(t, err)

	cur, err := bits.NewCursor(ft.Bytes, 0, 8*len(ft.Bytes), false, nil)
	require.NoError(t, err)

	return cur, codec
}

//
func testPayload(size, salt int) []byte {
	buf := make([]byte, size)
	for ix := range buf {
		buf[ix] = byte(ix*7 + salt*31)
	}
	return buf
}

//
func physicalSectorSet(t *testing.T, ptrs []*SectorPtr, sectors int) {
	require.Len(t, ptrs, sectors)
	seen := map[int]bool{}
	for _, p := range ptrs {
		assert.False(t, p.IsDamaged(),
			"sector %d unexpectedly damaged", p.Sector)
		assert.True(t, p.HasDataField())
		seen[p.Sector] = true
	}
	for s := 0; s < sectors; s++ {
		assert.True(t, seen[s], "sector %d missing", s)
	}
}

//
func roundTrip(t *testing.T, cfg Config, track, side, sectors int) {

	cur, codec := formattedTrack(t, cfg, track, side, sectors, 254)

	ptrs := codec.FindSectors(track, side, cur)
	physicalSectorSet(t, ptrs, sectors)

	for _, p := range ptrs {
		payload := testPayload(cfg.SectorSize, p.Sector)
		require.NoError(t, codec.WriteSector(cur, p, payload))
	}

	// rescan, then read everything back
	ptrs = codec.FindSectors(track, side, cur)
	physicalSectorSet(t, ptrs, sectors)

	buf := make([]byte, cfg.SectorSize)
	for _, p := range ptrs {
		require.True(t, codec.ReadSector(cur, p, buf))
		assert.Equal(t, testPayload(cfg.SectorSize, p.Sector), buf)
	}
}

//
func TestRoundTripDOS33(t *testing.T) {
	roundTrip(t, DOS33(), 0, 0, 16)
	roundTrip(t, DOS33(), 17, 0, 16)
}

//
func TestRoundTripDOS32(t *testing.T) {
	roundTrip(t, DOS32(), 0, 0, 13)
	roundTrip(t, DOS32(), 34, 0, 13)
}

//
func TestRoundTrip35(t *testing.T) {
	roundTrip(t, GCR35(), 0, 0, 12)
	roundTrip(t, GCR35(), 70, 1, 8)
	// track number beyond 63 exercises the split track field
	roundTrip(t, GCR35(), 79, 0, 8)
}

//
func TestRoundTripExtremePayloads(t *testing.T) {

	for _, cfg := range []Config{DOS33(), DOS32(), GCR35()} {

		sectors := 16
		if cfg.Encoding == Enc53 {
			sectors = 13
		} else if cfg.SectorSize == sectorSize35 {
			sectors = 12
		}

		cur, codec := formattedTrack(t, cfg, 0, 0, sectors, 254)
		ptrs := codec.FindSectors(0, 0, cur)
		require.Len(t, ptrs, sectors)

		allSet := make([]byte, cfg.SectorSize)
		for ix := range allSet {
			allSet[ix] = 0xff
		}

		for _, payload := range [][]byte{
			make([]byte, cfg.SectorSize),
			allSet,
		} {
			require.NoError(t, codec.WriteSector(cur, ptrs[0], payload))

			buf := make([]byte, cfg.SectorSize)
			require.True(t, codec.ReadSector(cur, ptrs[0], buf))
			assert.Equal(t, payload, buf, "format %s", cfg.Name)
		}
	}
}

//
func TestParityPrologQuirk(t *testing.T) {

	// odd track: written with the alternate prolog
	cur, codec := formattedTrack(t, DOS32Alt(), 1, 0, 13, 254)
	physicalSectorSet(t, codec.FindSectors(1, 0, cur), 13)

	// the plain variant doesn't see the alternate prolog at all
	plain, err := NewCodec(DOS32())
	require.NoError(t, err)
	assert.Empty(t, plain.FindSectors(1, 0, cur))

	// even track: both variants agree
	cur, codec = formattedTrack(t, DOS32Alt(), 2, 0, 13, 254)
	physicalSectorSet(t, codec.FindSectors(2, 0, cur), 13)
	require.Len(t, plain.FindSectors(2, 0, cur), 13)
}

//
func TestHalfSectorsQuirk(t *testing.T) {

	cur, codec := formattedTrack(t, Muse(), 3, 0, 13, 254)
	physicalSectorSet(t, codec.FindSectors(3, 0, cur), 13)

	// on disk, the sector numbers beyond track 2 are doubled
	plain, err := NewCodec(DOS32())
	require.NoError(t, err)
	raw := plain.FindSectors(3, 0, cur)
	require.Len(t, raw, 13)
	for _, p := range raw {
		assert.Zero(t, p.Sector%2, "sector %d not doubled on disk", p.Sector)
	}

	// at and below track 2, numbering is plain
	cur, codec = formattedTrack(t, Muse(), 2, 0, 13, 254)
	physicalSectorSet(t, codec.FindSectors(2, 0, cur), 13)
}

//
func TestDamagedDataField(t *testing.T) {

	cur, codec := formattedTrack(t, DOS33(), 5, 0, 16, 254)
	ptrs := codec.FindSectors(5, 0, cur)
	require.Len(t, ptrs, 16)

	// swap one disk byte for a different legal one; the checksum chain
	// diverges from that point on
	p := ptrs[3]
	cur.SetPosition(p.DataStartBit + 80)
	require.NoError(t, cur.WriteByte(0x97))

	buf := make([]byte, 256)
	assert.False(t, codec.ReadSector(cur, p, buf))
	assert.True(t, p.DataDamaged)

	// the damage shows up on a fresh scan as well
	ptrs = codec.FindSectors(5, 0, cur)
	require.Len(t, ptrs, 16)
	good := 0
	for _, q := range ptrs {
		if codec.ReadSector(cur, q, buf) {
			good++
		}
	}
	assert.Equal(t, 15, good)
}

//
func TestDamagedAddressField(t *testing.T) {

	cur, codec := formattedTrack(t, DOS33(), 5, 0, 16, 254)
	ptrs := codec.FindSectors(5, 0, cur)
	require.Len(t, ptrs, 16)

	// clobber one odd-even address byte; the field checksum must catch it
	cur.SetPosition(ptrs[7].AddrPrologBit + 8*4)
	require.NoError(t, cur.WriteByte(0xff))

	ptrs = codec.FindSectors(5, 0, cur)
	require.Len(t, ptrs, 16)

	damaged := 0
	for _, p := range ptrs {
		if p.AddrDamaged {
			damaged++
		}
	}
	assert.Equal(t, 1, damaged)
}

//
func TestDamagedEpilog(t *testing.T) {

	cur, codec := formattedTrack(t, DOS33(), 0, 0, 16, 254)
	ptrs := codec.FindSectors(0, 0, cur)
	require.Len(t, ptrs, 16)

	p := ptrs[0]
	cur.SetPosition(p.DataStartBit + 8*encodedSize62)
	require.NoError(t, cur.WriteByte(0xff)) // first data epilog byte

	buf := make([]byte, 256)
	assert.False(t, codec.ReadSector(cur, p, buf))
}

//
func TestWriteCreatesMissingDataField53(t *testing.T) {

	cur, codec := formattedTrack(t, DOS32(), 0, 0, 13, 254)
	ptrs := codec.FindSectors(0, 0, cur)
	require.Len(t, ptrs, 13)

	// wipe one sector's data prolog, as a freshly formatted 13 sector disk
	// would look
	victim := ptrs[4]
	cur.SetPosition(victim.DataPrologBit)
	for ix := 0; ix < 3; ix++ {
		require.NoError(t, cur.WriteByte(0xff))
	}

	ptrs = codec.FindSectors(0, 0, cur)
	require.Len(t, ptrs, 13)

	var p *SectorPtr
	for _, q := range ptrs {
		if !q.HasDataField() {
			p = q
		}
	}
	require.NotNil(t, p)
	assert.Equal(t, victim.Sector, p.Sector)

	payload := testPayload(256, 1)
	require.NoError(t, codec.WriteSector(cur, p, payload))
	assert.True(t, p.HasDataField())

	buf := make([]byte, 256)
	require.True(t, codec.ReadSector(cur, p, buf))
	assert.Equal(t, payload, buf)
}

//
func TestWriteMissingDataFieldRejected62(t *testing.T) {

	cur, codec := formattedTrack(t, DOS33(), 0, 0, 16, 254)
	ptrs := codec.FindSectors(0, 0, cur)
	require.Len(t, ptrs, 16)

	p := ptrs[2]
	cur.SetPosition(p.DataPrologBit)
	for ix := 0; ix < 3; ix++ {
		require.NoError(t, cur.WriteByte(0xff))
	}

	ptrs = codec.FindSectors(0, 0, cur)
	for _, q := range ptrs {
		if q.Sector == p.Sector {
			assert.False(t, q.HasDataField())
			err := codec.WriteSector(cur, q, make([]byte, 256))
			assert.Error(t, err)
		}
	}
}

//
func TestBoundedScanOnGarbage(t *testing.T) {

	codec, err := NewCodec(DOS33())
	require.NoError(t, err)

	// all zero
	cur, err := bits.NewCursor(make([]byte, 6656), 0, 8*6656, true, nil)
	require.NoError(t, err)
	assert.Empty(t, codec.FindSectors(0, 0, cur))

	// all sync
	buf := make([]byte, 6656)
	for ix := range buf {
		buf[ix] = 0xff
	}
	cur, err = bits.NewCursor(buf, 0, 8*6656, true, nil)
	require.NoError(t, err)
	assert.Empty(t, codec.FindSectors(0, 0, cur))

	// deterministic noise
	seed := uint32(0x2545f491)
	for ix := range buf {
		seed = seed*1664525 + 1013904223
		buf[ix] = byte(seed >> 24)
	}
	cur, err = bits.NewCursor(buf, 0, 8*6656, true, nil)
	require.NoError(t, err)
	codec.FindSectors(0, 0, cur) // must terminate
}

//
func TestShortTrackTreatedAsAbsent(t *testing.T) {

	codec, err := NewCodec(DOS33())
	require.NoError(t, err)

	cur, err := bits.NewCursor(make([]byte, 256), 0, 8*256, true, nil)
	require.NoError(t, err)
	assert.Empty(t, codec.FindSectors(0, 0, cur))
	assert.Empty(t, codec.FindSectors(0, 0, nil))
}

//
func TestUnverifiableCodecIsReadOnly(t *testing.T) {

	cfg := DOS33()
	cfg.VerifyDataChecksum = false
	codec, err := NewCodec(cfg)
	require.NoError(t, err)
	assert.True(t, codec.IsReadOnly())

	cur, writable := formattedTrack(t, DOS33(), 0, 0, 16, 254)
	ptrs := writable.FindSectors(0, 0, cur)
	require.Len(t, ptrs, 16)

	err = codec.WriteSector(cur, ptrs[0], make([]byte, 256))
	assert.Error(t, err)

	_, err = NewFormatter(codec).FormatTrack(0, 0, 16, 254)
	assert.Error(t, err)
}
