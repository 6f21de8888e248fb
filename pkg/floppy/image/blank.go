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

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

/*
	NewBlank525 creates a freshly low-level-formatted 5.25" image: every track
	fully synthesized with address fields, zero payloads and self-sync gaps.
	The sector count per track follows the codec's encoding, 13 for 5&3, 16
	for 6&2.
*/
func NewBlank525(cfg gcr.Config, tracks, volume int) (*Image, error) {

	if tracks != 35 && tracks != 40 {
		return nil, fmt.Errorf("want 35 or 40 tracks, got %d", tracks)
	}

	codec, err := gcr.NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	f := gcr.NewFormatter(codec)

	sectors := 16
	if cfg.Encoding == gcr.Enc53 {
		sectors = 13
	}

	img := newImage(chunk.Disk525, tracks, 1)
	for t := 0; t < tracks; t++ {
		ft, err := f.FormatTrack(t, 0, sectors, volume)
		if err != nil {
			return nil, fmt.Errorf("formatting track %d: %v", t, err)
		}
		img.setTrack(t, 0, ft.Bytes, 8*len(ft.Bytes))
	}

	return img, nil
}

/*
	NewBlank35 creates a freshly formatted 3.5" image with 80 cylinders and
	one or two heads. Sector counts and track budgets shrink zone by zone
	towards the center.
*/
func NewBlank35(sides int) (*Image, error) {

	if sides != 1 && sides != 2 {
		return nil, fmt.Errorf("want 1 or 2 sides, got %d", sides)
	}

	codec, err := gcr.NewCodec(gcr.GCR35())
	if err != nil {
		return nil, err
	}
	f := gcr.NewFormatter(codec)

	kind := chunk.Disk35SS
	if sides == 2 {
		kind = chunk.Disk35DS
	}

	img := newImage(kind, 80, sides)
	for cyl := 0; cyl < 80; cyl++ {
		sectors := 12 - cyl/16
		for head := 0; head < sides; head++ {
			ft, err := f.FormatTrack(cyl, head, sectors, 0)
			if err != nil {
				return nil, fmt.Errorf(
					"formatting cylinder %d head %d: %v", cyl, head, err)
			}
			img.setTrack(cyl, head, ft.Bytes, 8*len(ft.Bytes))
		}
	}

	return img, nil
}
