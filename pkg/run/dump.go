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

package run

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		"dump [-i|--input {file}] [-t|--track {track}] [-s|--sector {sector}] [-b|--block {block}]",
		"hex dump a sector or block from a nibble image",
		"\nUse the dump command to output a hex dump of one sector or one block of a nibble image. Specify either track & sector, or a block number.",
		"", runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddSetting(&d.File, "input", "i", "", nil, "nibble image file", true)
	d.AddSetting(&d.Order, "order", "r", "", "dos",
		"sector order (physical|dos|prodos|cpm)", false)
	d.AddSetting(&d.Track, "track", "t", "", -1, "track number", false)
	d.AddSetting(&d.Sector, "sector", "s", "", -1, "sector number", false)
	d.AddSetting(&d.Block, "block", "b", "", -1, "block number", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	File   string
	Order  string
	Track  int
	Sector int
	Block  int
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	order, err := chunk.ParseOrder(d.Order)
	if err != nil {
		return err
	}

	_, acc, err := openAccessor(d.File, d.Format)
	if err != nil {
		return err
	}

	var buf []byte

	if d.Block >= 0 {
		buf = make([]byte, chunk.BlockSize)
		if err := acc.ReadBlock(d.Block, order, buf); err != nil {
			return err
		}
		fmt.Printf("\nblock %d (%s order):\n\n", d.Block, order)

	} else {
		if d.Track < 0 || d.Sector < 0 {
			return fmt.Errorf(
				"specify either a block, or both track and sector")
		}
		buf = make([]byte, chunk.SectorSize)
		if err := acc.ReadSector(d.Track, d.Sector, order, buf); err != nil {
			return err
		}
		fmt.Printf("\ntrack %d, sector %d (%s order):\n\n",
			d.Track, d.Sector, order)
	}

	dump := hex.Dumper(os.Stdout)
	defer dump.Close()
	if _, err := dump.Write(buf); err != nil {
		return err
	}

	fmt.Println()
	return nil
}
