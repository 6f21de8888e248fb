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
	"os"

	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
	"github.com/xelalexv/nibworks/pkg/floppy/image"
)

//
func NewBlank() *Blank {

	b := &Blank{}
	b.Runner = *NewRunner(
		"blank [-o|--output {file}] [-f|--format {format}] [--tracks {count}] [--volume {volume}]",
		"create a freshly formatted nibble image",
		"\nUse the blank command to create a new, freshly low-level-formatted nibble image. All sectors carry zero payloads.",
		"", runnerHelpEpilogue, b.Run)

	b.AddBaseSettings()
	b.AddSetting(&b.File, "output", "o", "", nil, "output image file", true)
	b.AddSetting(&b.Tracks, "tracks", "", "", 35, "number of tracks (35|40)",
		false)
	b.AddSetting(&b.Volume, "volume", "", "", 254, "volume number", false)
	b.AddSetting(&b.Force, "force", "", "", nil,
		"overwrite output file if it exists", false)

	return b
}

//
type Blank struct {
	//
	Runner
	//
	File   string
	Tracks int
	Volume int
	Force  bool
}

//
func (b *Blank) Run() error {

	b.ParseSettings()

	cfg, err := configForName(b.Format)
	if err != nil {
		return err
	}
	if cfg.Encoding == gcr.Enc62 && cfg.SectorSize != 256 {
		return fmt.Errorf(
			"no writable container for %s images", cfg.Name)
	}

	if _, err := os.Stat(b.File); err == nil && !b.Force {
		if !GetUserConfirmation(
			fmt.Sprintf("overwrite existing file %s?", b.File)) {
			return nil
		}
	}

	img, err := image.NewBlank525(cfg, b.Tracks, b.Volume)
	if err != nil {
		return err
	}

	if err := saveImage(img, b.File); err != nil {
		return err
	}

	fmt.Printf("created blank %s image with %d tracks: %s\n",
		cfg.Name, b.Tracks, b.File)
	return nil
}
