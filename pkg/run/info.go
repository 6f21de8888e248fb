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
	"fmt"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

//
func NewInfo() *Info {

	i := &Info{}
	i.Runner = *NewRunner(
		"info [-i|--input {file}] [-f|--format {format}]",
		"scan a nibble image and report sector health",
		"\nUse the info command to scan all tracks of a nibble image and report which sectors were found, and which of them are damaged.",
		"", runnerHelpEpilogue, i.Run)

	i.AddBaseSettings()
	i.AddSetting(&i.File, "input", "i", "", nil, "nibble image file", true)

	return i
}

//
type Info struct {
	//
	Runner
	//
	File string
}

//
func (i *Info) Run() error {

	i.ParseSettings()

	cfg, err := configForName(i.Format)
	if err != nil {
		return err
	}

	img, acc, err := openAccessor(i.File, i.Format)
	if err != nil {
		return err
	}

	fmt.Printf("\nimage:     %s\n", i.File)
	fmt.Printf("format:    %s\n", cfg.Name)
	fmt.Printf("media:     %s\n", acc.Kind())
	fmt.Printf("tracks:    %d\n", acc.NumTracks())
	if acc.HasSectors() {
		fmt.Printf("sectors:   %d per track\n", acc.SectorsPerTrack())
	}
	if acc.HasBlocks() {
		fmt.Printf("blocks:    %d\n", acc.NumBlocks())
	}
	fmt.Printf("read only: %v\n\n", acc.IsReadOnly())

	codec, err := gcr.NewCodec(cfg)
	if err != nil {
		return err
	}
	dir := chunk.NewDirectory(img, codec)
	buf := make([]byte, cfg.SectorSize)

	for t := 0; t < acc.NumTracks(); t++ {
		for h := 0; h < img.Heads(); h++ {

			e := dir.GetOrBuild(t, h)
			if e == nil {
				fmt.Printf("track %2d.%d: missing\n", t, h)
				continue
			}

			good, bad := 0, 0
			report := ""

			for _, p := range e.Sectors {
				switch {
				case p.AddrDamaged:
					bad++
					report += fmt.Sprintf(
						" [sector %d: damaged address field]", p.Sector)
				case !p.HasDataField():
					report += fmt.Sprintf(
						" [sector %d: no data field]", p.Sector)
				case !codec.ReadSector(e.Cursor, p, buf):
					bad++
					report += fmt.Sprintf(
						" [sector %d: damaged data field]", p.Sector)
				default:
					good++
				}
			}

			fmt.Printf("track %2d.%d: %2d sectors, %2d good, %2d damaged%s\n",
				t, h, len(e.Sectors), good, bad, report)
		}
	}

	fmt.Println()
	return nil
}
