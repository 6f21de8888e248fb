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

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
)

/*
	Nibblize converts a plain sector image, raw 256 byte sectors in logical
	order, into a nibble image. Tracks are synthesized blank first, then the
	sectors are pushed through the regular chunk write path, so interleave and
	checksums come out exactly as a write to real media would. The order names
	the convention the input is laid out in, dos for ".do", prodos for ".po".
*/
func Nibblize(
	data []byte, cfg gcr.Config, order chunk.SectorOrder) (*Image, error) {

	sectors := 16
	if cfg.Encoding == gcr.Enc53 {
		sectors = 13
	}

	trackBytes := sectors * 256
	if len(data)%trackBytes != 0 {
		return nil, fmt.Errorf(
			"invalid sector image size: %d is not a multiple of %d",
			len(data), trackBytes)
	}
	tracks := len(data) / trackBytes
	if tracks != 35 && tracks != 40 {
		return nil, fmt.Errorf(
			"invalid sector image: want 35 or 40 tracks, got %d", tracks)
	}

	img, err := NewBlank525(cfg, tracks, 254)
	if err != nil {
		return nil, err
	}

	codec, err := gcr.NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	acc, err := chunk.NewAccessor(img, codec, chunk.Disk525)
	if err != nil {
		return nil, err
	}

	for t := 0; t < tracks; t++ {
		for s := 0; s < sectors; s++ {
			off := t*trackBytes + s*256
			if err := acc.WriteSector(
				t, s, order, data[off:off+256]); err != nil {
				return nil, fmt.Errorf(
					"nibblizing track %d sector %d: %v", t, s, err)
			}
		}
	}

	log.Debugf("nibblized %d tracks, %s order", tracks, order)
	return img, nil
}
