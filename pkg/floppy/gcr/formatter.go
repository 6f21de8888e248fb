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
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/nibworks/pkg/floppy/bits"
)

// nominal byte budget of a 5.25" track
const trackBytes525 = 6656

// self-sync filler byte; in a byte-oriented buffer the lengthened sync
// bytes collapse to plain 0xff
const syncByte = 0xff

const leadInGap = 48
const addrToDataGap = 6
const sectorGap = 24

/*
	FormattedTrack is one freshly encoded track. Bytes spans the track's full
	nominal budget, with everything beyond ByteCount padded with self-sync
	filler.
*/
type FormattedTrack struct {
	Bytes     []byte
	ByteCount int
	BitCount  int
}

/*
	Formatter synthesizes fully formatted tracks for disk creation: leading
	self-sync, then per physical sector an address field, gap, zero-filled
	data field and trailing gap. It is only involved when creating disks and
	shares the codec's field encoders, so formatted tracks decode through the
	exact inverse path.
*/
type Formatter struct {
	codec *Codec
}

//
func NewFormatter(c *Codec) *Formatter {
	return &Formatter{codec: c}
}

// TrackBudget is the nominal byte budget for a track with the given number
// of sectors. 5.25" tracks are fixed; 3.5" budgets shrink with the zone.
func (f *Formatter) TrackBudget(sectors int) int {
	if f.codec.is35() {
		return sectors*768 + 96
	}
	return trackBytes525
}

// bytes taken by one complete sector, fields and gaps
func (f *Formatter) sectorBytes() int {
	cfg := f.codec.cfg
	addr := len(cfg.AddrProlog) + cfg.addrFieldBytes() + len(cfg.AddrEpilog)
	data := len(cfg.DataProlog) + cfg.EncodedSize + len(cfg.DataEpilog)
	return addr + addrToDataGap + data + sectorGap
}

/*
	FormatTrack encodes one track with the given number of sectors, all
	payloads zero. A track that exceeds its nominal budget means the format
	table itself is wrong; that is a configuration error, not a condition to
	degrade on.
*/
func (f *Formatter) FormatTrack(
	track, side, sectors, volume int) (*FormattedTrack, error) {

	if f.codec.IsReadOnly() {
		return nil, fmt.Errorf(
			"codec %s is read only, cannot format", f.codec.cfg.Name)
	}

	budget := f.TrackBudget(sectors)
	need := leadInGap + sectors*f.sectorBytes()
	if need > budget {
		return nil, fmt.Errorf(
			"format table for %s is broken: track needs %d bytes, budget %d",
			f.codec.cfg.Name, need, budget)
	}

	buf := make([]byte, budget)
	for ix := range buf {
		buf[ix] = syncByte
	}

	cur, err := bits.NewCursor(buf, 0, 8*budget, false, nil)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, f.codec.cfg.SectorSize)
	p := &SectorPtr{}

	for ix := 0; ix < leadInGap; ix++ {
		if err := cur.WriteByte(syncByte); err != nil {
			return nil, err
		}
	}

	for sec := 0; sec < sectors; sec++ {
		if err := f.codec.writeAddressField(
			cur, track, side, sec, volume); err != nil {
			return nil, err
		}
		for ix := 0; ix < addrToDataGap; ix++ {
			if err := cur.WriteByte(syncByte); err != nil {
				return nil, err
			}
		}
		if err := f.codec.writeDataField(cur, p, payload); err != nil {
			return nil, err
		}
		for ix := 0; ix < sectorGap; ix++ {
			if err := cur.WriteByte(syncByte); err != nil {
				return nil, err
			}
		}
	}

	log.Debugf("formatted track %d side %d: %d sectors, %d of %d bytes",
		track, side, sectors, need, budget)

	return &FormattedTrack{
		Bytes:     buf,
		ByteCount: need,
		BitCount:  8 * need,
	}, nil
}
