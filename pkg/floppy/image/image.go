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
	"fmt"

	"github.com/xelalexv/nibworks/pkg/floppy/bits"
	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
)

/*
	track is the in-memory form of one recorded track: its raw bytes, the
	number of valid bits, and a dirty flag shared with every cursor handed
	out over it.
*/
type track struct {
	data     []byte
	bitCount int
	dirty    bool
}

/*
	Image is a fully resident nibble disk image. It satisfies the track source
	contract of the chunk layer: per-track bit cursors, absence as a normal
	outcome. Tracks are indexed by track number and fraction, the fraction
	being the head for 3.5" media.
*/
type Image struct {
	kind     chunk.DiskKind
	heads    int
	tracks   [][]*track
	readOnly bool
}

//
func (img *Image) Kind() chunk.DiskKind { return img.kind }

//
func (img *Image) Heads() int { return img.heads }

//
func (img *Image) TrackCount() int { return len(img.tracks) }

//
func (img *Image) IsReadOnly() bool { return img.readOnly }

//
func (img *Image) SetReadOnly(ro bool) { img.readOnly = ro }

// TrackBits hands out a cursor over one track. Every cursor for the same
// track shares the track's dirty flag, so modification tracking survives
// cloning.
func (img *Image) TrackBits(trk, fraction int) (*bits.Cursor, bool) {

	if trk < 0 || trk >= len(img.tracks) {
		return nil, false
	}
	if fraction < 0 || fraction >= len(img.tracks[trk]) {
		return nil, false
	}

	t := img.tracks[trk][fraction]
	if t == nil {
		return nil, false
	}

	cur, err := bits.NewCursor(t.data, 0, t.bitCount, img.readOnly, &t.dirty)
	if err != nil {
		return nil, false
	}
	return cur, true
}

// IsDirty reports whether any track was written to since the last reset.
func (img *Image) IsDirty() bool {
	for _, frs := range img.tracks {
		for _, t := range frs {
			if t != nil && t.dirty {
				return true
			}
		}
	}
	return false
}

//
func (img *Image) ClearDirty() {
	for _, frs := range img.tracks {
		for _, t := range frs {
			if t != nil {
				t.dirty = false
			}
		}
	}
}

//
func (img *Image) setTrack(trk, fraction int, data []byte, bitCount int) error {
	if trk < 0 || trk >= len(img.tracks) ||
		fraction < 0 || fraction >= img.heads {
		return fmt.Errorf("no slot for track %d.%d", trk, fraction)
	}
	img.tracks[trk][fraction] = &track{data: data, bitCount: bitCount}
	return nil
}

//
func newImage(kind chunk.DiskKind, tracks, heads int) *Image {
	img := &Image{
		kind:   kind,
		heads:  heads,
		tracks: make([][]*track, tracks),
	}
	for ix := range img.tracks {
		img.tracks[ix] = make([]*track, heads)
	}
	return img
}
