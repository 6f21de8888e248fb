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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/gcr"
	"github.com/xelalexv/nibworks/pkg/floppy/image"
)

//
const runnerHelpPrologue = ""
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.
`

/*
	NewRunner creates a base runner for commands to use. The parameters are
	passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Format string
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather has
	// to be called from the top level command type. Otherwise, we will confuse
	// Cobra/Viper and the settings will not be filled with their values.
	r.AddSetting(&r.Format, "format", "f", "NIBWORKS_FORMAT", "dos33",
		"nibble format (dos33|dos32|dos32alt|muse|gcr35)", false)
}

// configForName maps a format name to its codec configuration.
func configForName(name string) (gcr.Config, error) {
	switch strings.ToLower(name) {
	case "dos33":
		return gcr.DOS33(), nil
	case "dos32":
		return gcr.DOS32(), nil
	case "dos32alt":
		return gcr.DOS32Alt(), nil
	case "muse":
		return gcr.Muse(), nil
	case "gcr35":
		return gcr.GCR35(), nil
	}
	return gcr.Config{}, fmt.Errorf("unknown nibble format: %s", name)
}

// loadImage reads a nibble image from file; only the unadorned nibble
// container is supported.
func loadImage(file string) (*image.Image, error) {

	if getExtension(file) != "nib" {
		return nil, fmt.Errorf(
			"unsupported container: %s; only 'nib' can be read", file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return image.ReadNib(bufio.NewReader(f))
}

//
func saveImage(img *image.Image, file string) error {

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := image.WriteNib(img, w); err != nil {
		return err
	}
	return w.Flush()
}

// openAccessor wires image, codec and chunk adapter together for the given
// format name.
func openAccessor(
	file, format string) (*image.Image, *chunk.Accessor, error) {

	cfg, err := configForName(format)
	if err != nil {
		return nil, nil, err
	}

	img, err := loadImage(file)
	if err != nil {
		return nil, nil, err
	}

	codec, err := gcr.NewCodec(cfg)
	if err != nil {
		return nil, nil, err
	}

	acc, err := chunk.NewAccessor(img, codec, img.Kind())
	if err != nil {
		return nil, nil, err
	}
	return img, acc, nil
}

//
func getExtension(file string) string {
	return strings.TrimPrefix(filepath.Ext(file), ".")
}
