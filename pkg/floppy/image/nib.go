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
	"io"
	"io/ioutil"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
)

// fixed per-track byte count of the unadorned nibble container
const nibTrackBytes = 6656

/*
	ReadNib reads an unadorned nibble image: raw track bytes back to back,
	6656 per track, 35 or 40 tracks, no header, no per-bit timing. The
	container carries no bit count, so each track is taken at its full byte
	length.
*/
func ReadNib(r io.Reader) (*Image, error) {

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data)%nibTrackBytes != 0 {
		return nil, fmt.Errorf(
			"invalid nibble image size: %d is not a multiple of %d",
			len(data), nibTrackBytes)
	}

	tracks := len(data) / nibTrackBytes
	if tracks != 35 && tracks != 40 {
		return nil, fmt.Errorf(
			"invalid nibble image: want 35 or 40 tracks, got %d", tracks)
	}

	img := newImage(chunk.Disk525, tracks, 1)
	for t := 0; t < tracks; t++ {
		buf := make([]byte, nibTrackBytes)
		copy(buf, data[t*nibTrackBytes:])
		img.setTrack(t, 0, buf, 8*nibTrackBytes)
	}

	log.Debugf("read nibble image, %d tracks", tracks)
	return img, nil
}

/*
	WriteNib writes the image in the unadorned nibble container. Tracks
	shorter than the container's fixed track length are padded with self-sync
	filler; longer tracks mean the image cannot be represented and that is an
	error, not a truncation.
*/
func WriteNib(img *Image, w io.Writer) error {

	if img.Kind() != chunk.Disk525 {
		return fmt.Errorf("cannot write %s image as nibble container",
			img.Kind())
	}

	for t := 0; t < img.TrackCount(); t++ {

		trk := img.tracks[t][0]
		if trk == nil {
			return fmt.Errorf("track %d not present", t)
		}
		if len(trk.data) > nibTrackBytes {
			return fmt.Errorf(
				"track %d too long for nibble container: %d bytes",
				t, len(trk.data))
		}

		buf := make([]byte, nibTrackBytes)
		for ix := range buf {
			buf[ix] = 0xff
		}
		copy(buf, trk.data)

		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	return nil
}
