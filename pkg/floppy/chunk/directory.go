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

	"github.com/xelalexv/nibworks/pkg/floppy/bits"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

/*
	TrackSource yields per-track bit cursors. A missing track is a normal
	outcome, reported via the bool result, never an error: capture formats
	routinely omit tracks. The fraction selects a sub-track where the medium
	has them: the head for 3.5" disks, the quarter-track for 5.25" captures.
*/
type TrackSource interface {
	TrackBits(track, fraction int) (*bits.Cursor, bool)
	TrackCount() int
	IsReadOnly() bool
}

//
type trackKey struct {
	track    int
	fraction int
}

/*
	TrackEntry is the scan result for one track: the cursor the sectors were
	found through, plus their descriptors in physical discovery order.
*/
type TrackEntry struct {
	Cursor  *bits.Cursor
	Sectors []*gcr.SectorPtr
}

// Lookup finds the descriptor for a physical sector number; nil if the scan
// didn't see it. The list is small, a linear scan is fine.
func (e *TrackEntry) Lookup(sector int) *gcr.SectorPtr {
	for _, p := range e.Sectors {
		if p.Sector == sector {
			return p
		}
	}
	return nil
}

/*
	GetUndamaged wraps Lookup with policy: the caller gets either a usable
	descriptor or a reason. Callers must be able to surface why a sector is
	unreadable, so the reasons are distinct errors, not a bare miss.
*/
func (e *TrackEntry) GetUndamaged(
	sector int, allowMissingData bool) (*gcr.SectorPtr, error) {

	p := e.Lookup(sector)
	if p == nil {
		return nil, fmt.Errorf("sector %d not found", sector)
	}
	if p.AddrDamaged {
		return nil, fmt.Errorf(
			"address field of sector %d is damaged", sector)
	}
	if p.DataDamaged {
		return nil, fmt.Errorf("data field of sector %d is damaged", sector)
	}
	if !p.HasDataField() && !allowMissingData {
		return nil, fmt.Errorf("sector %d has no data field", sector)
	}
	return p, nil
}

/*
	Directory caches one TrackEntry per track, built lazily from a single
	codec scan. Entries live until the directory is reset; individual sector
	writes go through already resolved descriptors and don't invalidate.
*/
type Directory struct {
	source  TrackSource
	codec   *gcr.Codec
	entries map[trackKey]*TrackEntry
}

//
func NewDirectory(src TrackSource, codec *gcr.Codec) *Directory {
	return &Directory{
		source:  src,
		codec:   codec,
		entries: map[trackKey]*TrackEntry{},
	}
}

// GetOrBuild returns the cached entry for a track, scanning it on first
// access. A nil result means the track is not present in the source.
func (d *Directory) GetOrBuild(track, fraction int) *TrackEntry {

	key := trackKey{track: track, fraction: fraction}
	if e, ok := d.entries[key]; ok {
		return e
	}

	cur, ok := d.source.TrackBits(track, fraction)
	if !ok {
		d.entries[key] = nil
		return nil
	}

	e := &TrackEntry{
		Cursor:  cur,
		Sectors: d.codec.FindSectors(track, fraction, cur),
	}
	log.Debugf("track %d.%d: %d sectors", track, fraction, len(e.Sectors))

	d.entries[key] = e
	return e
}

// Reset drops all cached entries; used on close/reopen.
func (d *Directory) Reset() {
	d.entries = map[trackKey]*TrackEntry{}
}
