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

package chunk

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

// logical chunk sizes
const BlockSize = 512
const SectorSize = 256

// bytes of filesystem-independent recovery metadata prefixed to each 3.5"
// physical sector, excluded from the logical block
const TagBytes = 12

const blocksPerTrack525 = 8
const cylinders35 = 80
const zoneCylinders = 16
const maxZoneSectors = 12

/*
	Track count probing: when a 5.25" source declares 40 tracks, track 39 must
	carry more than this many sectors with clean address AND data fields to be
	believed. Some capture formats pad to 40 tracks by re-reading the last
	in-range track, which yields sectors whose address fields report the wrong
	track and therefore scan as damaged; checking mere presence would be
	fooled. The threshold is hand-picked, not derived; there is no stronger
	signal in the data.
*/
const trackProbeThreshold = 4
const probeTrack = 39

//
type DiskKind int

const (
	Disk525 DiskKind = iota
	Disk35SS
	Disk35DS
)

//
func (k DiskKind) String() string {
	switch k {
	case Disk525:
		return `5.25"`
	case Disk35SS:
		return `3.5" single-sided`
	case Disk35DS:
		return `3.5" double-sided`
	}
	return "unknown"
}

/*
	Accessor presents logical 512 byte blocks and 256 byte sectors to
	filesystem code, hiding interleave and nibble codec details. Geometry is
	derived once at construction from the disk kind and the codec: 16 sector
	5.25" disks pair two sectors per block, 13 sector disks are sector-only,
	3.5" disks are block-only with zoned sector counts.
*/
type Accessor struct {
	source TrackSource
	codec  *gcr.Codec
	dir    *Directory
	kind   DiskKind

	tracks     int
	heads      int
	spt        int
	hasBlocks  bool
	hasSectors bool
}

//
func NewAccessor(
	src TrackSource, codec *gcr.Codec, kind DiskKind) (*Accessor, error) {

	a := &Accessor{
		source: src,
		codec:  codec,
		dir:    NewDirectory(src, codec),
		kind:   kind,
	}

	switch kind {

	case Disk525:
		a.heads = 1
		a.hasSectors = true
		if codec.Config().Encoding == gcr.Enc53 {
			a.spt = 13
		} else {
			a.spt = 16
			a.hasBlocks = true
		}
		a.tracks = src.TrackCount()
		if a.tracks > 35 {
			a.tracks = a.probeTrackCount()
		}

	case Disk35SS, Disk35DS:
		a.heads = 1
		if kind == Disk35DS {
			a.heads = 2
		}
		a.tracks = cylinders35
		a.hasBlocks = true

	default:
		return nil, fmt.Errorf("unknown disk kind: %d", kind)
	}

	return a, nil
}

/*
	probeTrackCount disambiguates 35 vs 40 track sources by examining track
	39 for sectors whose address and data fields both check out.
*/
func (a *Accessor) probeTrackCount() int {

	e := a.dir.GetOrBuild(probeTrack, 0)
	if e == nil {
		return 35
	}

	clean := 0
	buf := make([]byte, a.codec.Config().SectorSize)
	for _, p := range e.Sectors {
		if p.AddrDamaged || !p.HasDataField() {
			continue
		}
		if a.codec.ReadSector(e.Cursor, p, buf) {
			clean++
		}
	}

	log.Debugf("track %d probe: %d clean sectors", probeTrack, clean)
	if clean > trackProbeThreshold {
		return 40
	}
	return 35
}

//
func (a *Accessor) Kind() DiskKind { return a.kind }

//
func (a *Accessor) NumTracks() int { return a.tracks }

//
func (a *Accessor) SectorsPerTrack() int { return a.spt }

//
func (a *Accessor) HasBlocks() bool { return a.hasBlocks }

//
func (a *Accessor) HasSectors() bool { return a.hasSectors }

// IsReadOnly is derived, not stored: true when the codec cannot verify both
// checksums, or the underlying source refuses writes.
func (a *Accessor) IsReadOnly() bool {
	return a.codec.IsReadOnly() || a.source.IsReadOnly()
}

//
func (a *Accessor) NumBlocks() int {
	if !a.hasBlocks {
		return 0
	}
	if a.kind == Disk525 {
		return a.tracks * blocksPerTrack525
	}
	n := 0
	for cyl := 0; cyl < cylinders35; cyl++ {
		n += a.heads * sectorsPerCylinder35(cyl)
	}
	return n
}

// sectors per track drop by one every 16 cylinders, starting at 12
func sectorsPerCylinder35(cyl int) int {
	return maxZoneSectors - cyl/zoneCylinders
}

// blockToCHS translates a 3.5" block number into cylinder, head and sector
// through the zoned recording layout.
func (a *Accessor) blockToCHS(block int) (int, int, int, error) {
	n := block
	for cyl := 0; cyl < cylinders35; cyl++ {
		spt := sectorsPerCylinder35(cyl)
		per := spt * a.heads
		if n < per {
			return cyl, n / spt, n % spt, nil
		}
		n -= per
	}
	return 0, 0, 0, fmt.Errorf("block %d out of range", block)
}

//
func (a *Accessor) resolveSector(
	track, sector int, order SectorOrder, allowMissingData bool) (
	*TrackEntry, *gcr.SectorPtr, error) {

	if track < 0 || track >= a.tracks {
		return nil, nil, fmt.Errorf("track %d out of range", track)
	}
	if sector < 0 || sector >= a.spt {
		return nil, nil, fmt.Errorf("sector %d out of range", sector)
	}

	phys := SkewTable(order, a.spt)[sector]

	e := a.dir.GetOrBuild(track, 0)
	if e == nil {
		return nil, nil, fmt.Errorf("track %d not present", track)
	}

	p, err := e.GetUndamaged(phys, allowMissingData)
	if err != nil {
		return nil, nil, fmt.Errorf("track %d: %v", track, err)
	}
	return e, p, nil
}

// ReadSector reads one logical 256 byte sector, applying the requested
// sector order.
func (a *Accessor) ReadSector(
	track, sector int, order SectorOrder, buf []byte) error {

	if !a.hasSectors {
		return fmt.Errorf("%s disks have no sector access", a.kind)
	}
	if len(buf) < SectorSize {
		return fmt.Errorf("sector buffer too small: %d", len(buf))
	}

	e, p, err := a.resolveSector(track, sector, order, false)
	if err != nil {
		return err
	}
	if !a.codec.ReadSector(e.Cursor, p, buf) {
		return fmt.Errorf(
			"data field of sector %d on track %d is damaged", sector, track)
	}
	return nil
}

//
func (a *Accessor) WriteSector(
	track, sector int, order SectorOrder, buf []byte) error {

	if !a.hasSectors {
		return fmt.Errorf("%s disks have no sector access", a.kind)
	}
	if a.IsReadOnly() {
		return fmt.Errorf("disk is read only")
	}

	e, p, err := a.resolveSector(track, sector, order, true)
	if err != nil {
		return err
	}
	return a.codec.WriteSector(e.Cursor, p, buf)
}

// TestSector is a non-throwing readability probe, so higher layers can tell
// bad from unformatted without error-driven control flow.
func (a *Accessor) TestSector(track, sector int, order SectorOrder) bool {
	if !a.hasSectors {
		return false
	}
	buf := make([]byte, SectorSize)
	return a.ReadSector(track, sector, order, buf) == nil
}

// ReadBlock reads one logical 512 byte block.
func (a *Accessor) ReadBlock(block int, order SectorOrder, buf []byte) error {

	if !a.hasBlocks {
		return fmt.Errorf("%s %s disks have no block access",
			a.kind, a.codec.Config().Name)
	}
	if len(buf) < BlockSize {
		return fmt.Errorf("block buffer too small: %d", len(buf))
	}

	if a.kind == Disk525 {
		track, base := block/blocksPerTrack525,
			(block%blocksPerTrack525)*2
		if err := a.ReadSector(
			track, base, order, buf[:SectorSize]); err != nil {
			return err
		}
		return a.ReadSector(track, base+1, order, buf[SectorSize:BlockSize])
	}

	cyl, head, sec, err := a.blockToCHS(block)
	if err != nil {
		return err
	}
	phys := make([]byte, a.codec.Config().SectorSize)
	if err := a.readPhys35(cyl, head, sec, phys); err != nil {
		return err
	}
	copy(buf, phys[TagBytes:TagBytes+BlockSize])
	return nil
}

//
func (a *Accessor) WriteBlock(block int, order SectorOrder, buf []byte) error {

	if !a.hasBlocks {
		return fmt.Errorf("%s %s disks have no block access",
			a.kind, a.codec.Config().Name)
	}
	if a.IsReadOnly() {
		return fmt.Errorf("disk is read only")
	}
	if len(buf) < BlockSize {
		return fmt.Errorf("block buffer too small: %d", len(buf))
	}

	if a.kind == Disk525 {
		track, base := block/blocksPerTrack525,
			(block%blocksPerTrack525)*2
		if err := a.WriteSector(
			track, base, order, buf[:SectorSize]); err != nil {
			return err
		}
		return a.WriteSector(track, base+1, order, buf[SectorSize:BlockSize])
	}

	cyl, head, sec, err := a.blockToCHS(block)
	if err != nil {
		return err
	}

	// read-modify-write to preserve the tag bytes; zeroing them would
	// destroy filesystem-independent metadata
	phys := make([]byte, a.codec.Config().SectorSize)
	if err := a.readPhys35(cyl, head, sec, phys); err != nil {
		log.Debugf("block %d: no readable previous content, blank tags", block)
		for ix := range phys {
			phys[ix] = 0
		}
	}
	copy(phys[TagBytes:], buf[:BlockSize])
	return a.writePhys35(cyl, head, sec, phys)
}

//
func (a *Accessor) TestBlock(block int, order SectorOrder) bool {
	if !a.hasBlocks {
		return false
	}
	buf := make([]byte, BlockSize)
	return a.ReadBlock(block, order, buf) == nil
}

//
func (a *Accessor) readPhys35(cyl, head, sec int, buf []byte) error {
	e := a.dir.GetOrBuild(cyl, head)
	if e == nil {
		return fmt.Errorf("cylinder %d head %d not present", cyl, head)
	}
	p, err := e.GetUndamaged(sec, false)
	if err != nil {
		return fmt.Errorf("cylinder %d head %d: %v", cyl, head, err)
	}
	if !a.codec.ReadSector(e.Cursor, p, buf) {
		return fmt.Errorf(
			"data field of sector %d on cylinder %d head %d is damaged",
			sec, cyl, head)
	}
	return nil
}

//
func (a *Accessor) writePhys35(cyl, head, sec int, buf []byte) error {
	e := a.dir.GetOrBuild(cyl, head)
	if e == nil {
		return fmt.Errorf("cylinder %d head %d not present", cyl, head)
	}
	p, err := e.GetUndamaged(sec, false)
	if err != nil {
		return fmt.Errorf("cylinder %d head %d: %v", cyl, head, err)
	}
	return a.codec.WriteSector(e.Cursor, p, buf)
}

/*
	Initialize writes all-zero content to every addressable unit, through the
	normal write path so checksums land correctly. Used to blank-format a
	volume.
*/
func (a *Accessor) Initialize() error {

	if a.IsReadOnly() {
		return fmt.Errorf("disk is read only")
	}

	if a.hasSectors {
		buf := make([]byte, SectorSize)
		for t := 0; t < a.tracks; t++ {
			for s := 0; s < a.spt; s++ {
				if err := a.WriteSector(t, s, OrderPhysical, buf); err != nil {
					return fmt.Errorf("initializing track %d: %v", t, err)
				}
			}
		}
		return nil
	}

	buf := make([]byte, BlockSize)
	for b := 0; b < a.NumBlocks(); b++ {
		if err := a.WriteBlock(b, OrderPhysical, buf); err != nil {
			return fmt.Errorf("initializing block %d: %v", b, err)
		}
	}
	return nil
}
