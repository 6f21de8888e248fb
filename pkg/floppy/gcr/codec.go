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

// latch bytes inspected after an address field before giving up on finding
// the matching data field
const dataSearchWindow = 24

// self-sync bytes laid down before a freshly created data field
const freshDataFieldGap = 5

/*
	SectorPtr records where one sector's fields sit within a track, along with
	the values decoded from its address field. A DataPrologBit of -1 means the
	address field has no data field, which is a valid state for freshly
	low-level-formatted 13 sector disks. Descriptors are created by a track
	scan and stay put; only the damage flags are refreshed on re-read.
*/
type SectorPtr struct {
	AddrPrologBit int
	DataPrologBit int
	DataStartBit  int
	DataEndBit    int

	Track  int
	Sector int
	Side   int
	Format int
	Volume int

	AddrDamaged bool
	DataDamaged bool
}

//
func (p *SectorPtr) HasDataField() bool {
	return p.DataPrologBit >= 0
}

//
func (p *SectorPtr) IsDamaged() bool {
	return p.AddrDamaged || p.DataDamaged
}

/*
	Codec turns the raw bit stream of one track into sectors and back,
	according to its immutable format configuration. A codec instance is
	stateless across calls and can be shared.
*/
type Codec struct {
	cfg Config
}

//
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg}, nil
}

//
func (c *Codec) Config() Config {
	return c.cfg
}

/*
	IsReadOnly reports whether this codec must not write. A format that cannot
	verify both checksums cannot validate what it would encode back.
*/
func (c *Codec) IsReadOnly() bool {
	return !c.cfg.VerifyAddrChecksum || !c.cfg.VerifyDataChecksum
}

// is35 tells the 524 byte 3.5" field layout apart from the 5.25" one
func (c *Codec) is35() bool {
	return c.cfg.SectorSize == sectorSize35
}

// addrProlog is the per-track pre-adjust hook.
func (c *Codec) addrProlog(track int) []byte {
	if c.cfg.Quirk == QuirkParityProlog && track%2 == 1 {
		return c.cfg.AltAddrProlog
	}
	return c.cfg.AddrProlog
}

// postAdjust renormalizes decoded address values for quirky variants.
func (c *Codec) postAdjust(p *SectorPtr) {
	if c.cfg.Quirk == QuirkHalfSectors && p.Track > 2 {
		p.Sector /= 2
	}
}

// storedSector is the inverse of postAdjust, applied when encoding.
func (c *Codec) storedSector(track, sector int) int {
	if c.cfg.Quirk == QuirkHalfSectors && track > 2 {
		return sector * 2
	}
	return sector
}

/*
	FindSectors scans one full revolution of the track for address fields and
	returns a descriptor per candidate, in physical discovery order. Damaged
	fields are recorded, never dropped: callers need to report which sectors
	are bad, not just that the track is. The scan is bounded and terminates on
	arbitrary garbage input.
*/
func (c *Codec) FindSectors(track, side int, cur *bits.Cursor) []*SectorPtr {

	found := []*SectorPtr{}

	if cur == nil || cur.BitCount() < bits.MinViableTrackBits {
		return found
	}

	cur = cur.Clone()
	cur.SetPosition(0)

	prolog := c.addrProlog(track)
	bc := cur.BitCount()
	traveled := 0
	matched := 0
	prologStart := 0

	for traveled < bc {

		from := cur.Position()
		d, err := cur.ReadLatch()
		traveled += wrapDelta(from, cur.Position(), bc)
		if err != nil {
			matched = 0
			continue
		}

		switch {
		case d == prolog[matched]:
		case d == prolog[0]:
			matched = 0
		default:
			matched = 0
			continue
		}

		if matched == 0 {
			prologStart = wrapBack(cur.Position(), 8, bc)
		}
		matched++
		if matched < len(prolog) {
			continue
		}
		matched = 0

		from = cur.Position()
		p := c.decodeAddr(track, side, cur, prologStart)
		c.findDataField(cur, p)
		traveled += wrapDelta(from, cur.Position(), bc)

		log.Tracef(
			"sector %d at bit %d, track %d, damaged=%v/%v",
			p.Sector, p.AddrPrologBit, p.Track, p.AddrDamaged, p.DataDamaged)

		found = append(found, p)
	}

	return found
}

/*
	ReadSector decodes the descriptor's data field into buf, which must hold
	at least SectorSize bytes. A false result means the payload could not be
	decoded or failed checksum or epilog verification; on damaged media that
	is an expected outcome, not a program error, and the descriptor's damage
	flag is updated to match.
*/
func (c *Codec) ReadSector(cur *bits.Cursor, p *SectorPtr, buf []byte) bool {

	if !p.HasDataField() || len(buf) < c.cfg.SectorSize {
		return false
	}

	cur.SetPosition(p.DataStartBit)

	var ok bool
	switch {
	case c.cfg.Encoding == Enc53:
		ok = decodeData53(cur, buf, c.cfg.ChecksumSeed)
	case c.is35():
		ok = decodeData35(cur, buf, c.cfg.ChecksumSeed)
	default:
		ok = decodeData62(cur, buf, c.cfg.ChecksumSeed)
	}

	if ok && c.cfg.VerifyDataChecksum {
		// nothing further; the checksum is folded into the payload decode
	} else if !ok && !c.cfg.VerifyDataChecksum {
		// unverifiable variant; damage cannot be told apart from data
		ok = true
	}

	if ok {
		ok = c.checkEpilog(cur, c.cfg.DataEpilog, c.cfg.DataEpilogCheck)
	}

	p.DataDamaged = !ok
	return ok
}

/*
	WriteSector encodes buf into the descriptor's data field, laying down a
	fresh checksum. On 13 sector disks that were only low-level formatted, a
	missing data field is created right after the address field; other formats
	refuse to write without the placeholder. All policy checks happen before
	any mutation.
*/
func (c *Codec) WriteSector(cur *bits.Cursor, p *SectorPtr, buf []byte) error {

	if c.IsReadOnly() {
		return fmt.Errorf("codec %s is read only", c.cfg.Name)
	}
	if cur.IsReadOnly() {
		return bits.ErrReadOnly
	}
	if len(buf) != c.cfg.SectorSize {
		return fmt.Errorf("invalid sector buffer size, want %d, got %d",
			c.cfg.SectorSize, len(buf))
	}

	if !p.HasDataField() {
		if c.cfg.Encoding != Enc53 {
			return fmt.Errorf(
				"sector %d on track %d has no data field", p.Sector, p.Track)
		}
		start := p.AddrPrologBit +
			8*(len(c.addrProlog(p.Track))+c.cfg.addrFieldBytes()+
				len(c.cfg.AddrEpilog))
		cur.SetPosition(start)
		for ix := 0; ix < freshDataFieldGap; ix++ {
			if err := cur.WriteByte(0xff); err != nil {
				return err
			}
		}
		p.DataPrologBit = cur.Position()
	} else {
		cur.SetPosition(p.DataPrologBit)
	}

	if err := c.writeDataField(cur, p, buf); err != nil {
		return err
	}

	p.DataDamaged = false
	return nil
}

// writeDataField writes prolog, payload, checksum and epilog at the cursor,
// updating the descriptor's data field offsets.
func (c *Codec) writeDataField(
	cur *bits.Cursor, p *SectorPtr, buf []byte) error {

	p.DataPrologBit = cur.Position()
	for _, b := range c.cfg.DataProlog {
		if err := cur.WriteByte(b); err != nil {
			return err
		}
	}
	p.DataStartBit = cur.Position()

	var err error
	switch {
	case c.cfg.Encoding == Enc53:
		err = encodeData53(cur, buf, c.cfg.ChecksumSeed)
	case c.is35():
		err = encodeData35(cur, buf, c.cfg.ChecksumSeed)
	default:
		err = encodeData62(cur, buf, c.cfg.ChecksumSeed)
	}
	if err != nil {
		return err
	}

	for _, b := range c.cfg.DataEpilog {
		if err := cur.WriteByte(b); err != nil {
			return err
		}
	}
	p.DataEndBit = cur.Position()
	return nil
}

// writeAddressField writes a complete address field at the cursor.
func (c *Codec) writeAddressField(
	cur *bits.Cursor, track, side, sector, volume int) error {

	for _, b := range c.addrProlog(track) {
		if err := cur.WriteByte(b); err != nil {
			return err
		}
	}

	sec := c.storedSector(track, sector)

	if c.is35() {
		trk := byte(track & 0x3f)
		sd := byte(side&1)<<5 | byte(track>>6)
		chk := (trk ^ byte(sec) ^ sd ^ c.cfg.FormatByte ^
			c.cfg.ChecksumSeed) & 0x3f
		for _, v := range []byte{trk, byte(sec), sd, c.cfg.FormatByte, chk} {
			if err := cur.WriteByte(Encode62[v&0x3f]); err != nil {
				return err
			}
		}
	} else {
		vol, trk := byte(volume), byte(track)
		chk := c.cfg.ChecksumSeed ^ vol ^ trk ^ byte(sec)
		for _, v := range []byte{vol, trk, byte(sec), chk} {
			if err := writeOddEven(cur, v); err != nil {
				return err
			}
		}
	}

	for _, b := range c.cfg.AddrEpilog {
		if err := cur.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

// decodeAddr decodes the address field right after a matched prolog. The
// returned descriptor is flagged damaged on checksum, epilog or track number
// mismatch, but always returned, so damaged sectors stay enumerable.
func (c *Codec) decodeAddr(
	track, side int, cur *bits.Cursor, prologStart int) *SectorPtr {

	p := &SectorPtr{
		AddrPrologBit: prologStart,
		DataPrologBit: -1,
	}

	if c.is35() {
		var v [5]byte
		for ix := range v {
			d, err := cur.ReadLatch()
			if err != nil {
				p.AddrDamaged = true
				return p
			}
			dec, ok := Decode62(d)
			if !ok {
				p.AddrDamaged = true
				return p
			}
			v[ix] = dec
		}
		p.Track = int(v[0]) | int(v[2]&0x1f)<<6
		p.Sector = int(v[1])
		p.Side = int(v[2] >> 5)
		p.Format = int(v[3])
		if c.cfg.VerifyAddrChecksum &&
			(v[0]^v[1]^v[2]^v[3]^c.cfg.ChecksumSeed)&0x3f != v[4] {
			p.AddrDamaged = true
		}
	} else {
		var v [4]byte
		for ix := range v {
			dec, ok := readOddEven(cur)
			if !ok {
				p.AddrDamaged = true
				return p
			}
			v[ix] = dec
		}
		p.Volume = int(v[0])
		p.Track = int(v[1])
		p.Sector = int(v[2])
		if c.cfg.VerifyAddrChecksum &&
			c.cfg.ChecksumSeed^v[0]^v[1]^v[2] != v[3] {
			p.AddrDamaged = true
		}
	}

	if !c.checkEpilog(cur, c.cfg.AddrEpilog, c.cfg.AddrEpilogCheck) {
		p.AddrDamaged = true
	}

	c.postAdjust(p)

	if c.cfg.VerifyTrack && p.Track != track {
		log.Debugf("track mismatch, want %d, got %d", track, p.Track)
		p.AddrDamaged = true
	}

	return p
}

/*
	findDataField searches a short fixed window after the address field for
	the data prolog. Absence is recorded as DataPrologBit -1, a normal state,
	and the cursor is restored so the address scan resumes where the field
	search began. When the field is found, the cursor is parked past it, so
	payload bytes are never mistaken for address prologs.
*/
func (c *Codec) findDataField(cur *bits.Cursor, p *SectorPtr) {

	bc := cur.BitCount()
	resume := cur.Position()
	matched := 0
	start := 0

	for ix := 0; ix < dataSearchWindow; ix++ {
		d, err := cur.ReadLatch()
		if err != nil {
			break
		}
		switch {
		case d == c.cfg.DataProlog[matched]:
		case d == c.cfg.DataProlog[0]:
			matched = 0
		default:
			matched = 0
			continue
		}
		if matched == 0 {
			start = wrapBack(cur.Position(), 8, bc)
		}
		matched++
		if matched < len(c.cfg.DataProlog) {
			continue
		}

		p.DataPrologBit = start
		p.DataStartBit = cur.Position()
		p.DataEndBit = (p.DataStartBit +
			8*(c.cfg.EncodedSize+len(c.cfg.DataEpilog))) % bc
		cur.SetPosition(p.DataEndBit)
		return
	}

	cur.SetPosition(resume)
}

//
func (c *Codec) checkEpilog(cur *bits.Cursor, epilog []byte, count int) bool {
	for ix := 0; ix < count; ix++ {
		d, err := cur.ReadLatch()
		if err != nil || d != epilog[ix] {
			return false
		}
	}
	return true
}

// wrapDelta is the number of bits traveled from one position to another on a
// circular track, assuming less than one full revolution.
func wrapDelta(from, to, bitCount int) int {
	d := to - from
	if d <= 0 {
		d += bitCount
	}
	return d
}

//
func wrapBack(pos, n, bitCount int) int {
	p := pos - n
	if p < 0 {
		p += bitCount
	}
	return p
}
