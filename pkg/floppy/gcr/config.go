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
)

//
type Encoding int

const (
	Enc62 Encoding = iota // six bits per disk byte
	Enc53                 // five bits per disk byte
)

/*
	Quirk identifies a known per-format deviation from the common scan and
	field algorithms. The set is closed: new quirky formats get a new tag
	here, dispatched by the shared code paths, never a forked scanner.
*/
type Quirk int

const (
	QuirkNone Quirk = iota
	// odd tracks use the alternate address prolog
	QuirkParityProlog
	// sector numbers on disk are doubled beyond track 2; decode halves them
	QuirkHalfSectors
)

/*
	Config describes one nibble format variant. Instances are immutable once
	handed to a codec. A variant that cannot verify both the address and the
	data checksum must not be written to: encoding back to disk would silently
	corrupt data the codec cannot validate, so such a codec reports itself
	read only.
*/
type Config struct {
	Name     string
	Encoding Encoding

	// decoded payload bytes per sector, and encoded disk bytes between data
	// prolog and epilog, checksum included
	SectorSize  int
	EncodedSize int

	AddrProlog    []byte
	AltAddrProlog []byte // QuirkParityProlog only
	AddrEpilog    []byte
	DataProlog    []byte
	DataEpilog    []byte

	ChecksumSeed byte

	// how many epilog bytes are actually compared; some formats only bother
	// with the first one or two
	AddrEpilogCheck int
	DataEpilogCheck int

	VerifyAddrChecksum bool
	VerifyDataChecksum bool
	VerifyTrack        bool

	// 3.5" address fields carry a format byte instead of a volume number
	FormatByte byte

	Quirk Quirk
}

// encoded disk bytes in an address field, between prolog and epilog
func (c *Config) addrFieldBytes() int {
	if c.Encoding == Enc62 && c.SectorSize == sectorSize35 {
		return 5 // track low, sector, side, format, checksum
	}
	return 8 // volume, track, sector, checksum, odd-even encoded
}

//
func (c *Config) validate() error {

	if c.SectorSize != sectorSize525 && c.SectorSize != sectorSize35 {
		return fmt.Errorf("unsupported sector size: %d", c.SectorSize)
	}
	if c.SectorSize == sectorSize35 && c.Encoding != Enc62 {
		return fmt.Errorf("524 byte sectors require 6&2 encoding")
	}
	if len(c.AddrProlog) == 0 || len(c.DataProlog) == 0 {
		return fmt.Errorf("prolog sequences must not be empty")
	}
	if c.AddrEpilogCheck > len(c.AddrEpilog) ||
		c.DataEpilogCheck > len(c.DataEpilog) {
		return fmt.Errorf("epilog check count exceeds epilog length")
	}
	if c.Quirk == QuirkParityProlog && len(c.AltAddrProlog) == 0 {
		return fmt.Errorf("parity prolog quirk needs an alternate prolog")
	}

	want := 0
	switch c.Encoding {
	case Enc62:
		if c.SectorSize == sectorSize35 {
			want = encodedSize35
		} else {
			want = encodedSize62
		}
	case Enc53:
		want = encodedSize53
	}
	if c.EncodedSize != want {
		return fmt.Errorf(
			"invalid encoded size for %s, want %d, got %d",
			c.Name, want, c.EncodedSize)
	}

	return nil
}

// DOS33 is the 16 sector 5.25" 6&2 format used by DOS 3.3 and ProDOS.
func DOS33() Config {
	return Config{
		Name:               "dos33",
		Encoding:           Enc62,
		SectorSize:         sectorSize525,
		EncodedSize:        encodedSize62,
		AddrProlog:         []byte{0xd5, 0xaa, 0x96},
		AddrEpilog:         []byte{0xde, 0xaa, 0xeb},
		DataProlog:         []byte{0xd5, 0xaa, 0xad},
		DataEpilog:         []byte{0xde, 0xaa, 0xeb},
		AddrEpilogCheck:    2,
		DataEpilogCheck:    2,
		VerifyAddrChecksum: true,
		VerifyDataChecksum: true,
		VerifyTrack:        true,
	}
}

// DOS32 is the 13 sector 5.25" 5&3 format used by DOS 3.2.
func DOS32() Config {
	return Config{
		Name:               "dos32",
		Encoding:           Enc53,
		SectorSize:         sectorSize525,
		EncodedSize:        encodedSize53,
		AddrProlog:         []byte{0xd5, 0xaa, 0xb5},
		AddrEpilog:         []byte{0xde, 0xaa, 0xeb},
		DataProlog:         []byte{0xd5, 0xaa, 0xad},
		DataEpilog:         []byte{0xde, 0xaa, 0xeb},
		AddrEpilogCheck:    2,
		DataEpilogCheck:    2,
		VerifyAddrChecksum: true,
		VerifyDataChecksum: true,
		VerifyTrack:        true,
	}
}

/*
	DOS32Alt is a 13 sector variant that alternates its address prolog by
	track parity, a mild copy protection scheme found on a few publishers'
	disks.
*/
func DOS32Alt() Config {
	c := DOS32()
	c.Name = "dos32alt"
	c.AltAddrProlog = []byte{0xd4, 0xaa, 0xb5}
	c.Quirk = QuirkParityProlog
	return c
}

/*
	Muse is a 13 sector variant whose publisher doubled the sector numbers
	stored on disk beyond track 2; decode renormalizes them.
*/
func Muse() Config {
	c := DOS32()
	c.Name = "muse"
	c.Quirk = QuirkHalfSectors
	return c
}

// GCR35 is the 3.5" 524 byte zoned recording format.
func GCR35() Config {
	return Config{
		Name:               "gcr35",
		Encoding:           Enc62,
		SectorSize:         sectorSize35,
		EncodedSize:        encodedSize35,
		AddrProlog:         []byte{0xd5, 0xaa, 0x96},
		AddrEpilog:         []byte{0xde, 0xaa},
		DataProlog:         []byte{0xd5, 0xaa, 0xad},
		DataEpilog:         []byte{0xde, 0xaa},
		AddrEpilogCheck:    2,
		DataEpilogCheck:    2,
		VerifyAddrChecksum: true,
		VerifyDataChecksum: true,
		VerifyTrack:        true,
		FormatByte:         0x22, // double-sided interleave 2:1
	}
}
