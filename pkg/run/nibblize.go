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
	"io/ioutil"

	"github.com/xelalexv/nibworks/pkg/floppy/chunk"
	"github.com/xelalexv/nibworks/pkg/floppy/image"
)

//
func NewNibblize() *Nibblize {

	n := &Nibblize{}
	n.Runner = *NewRunner(
		"nibblize [-i|--input {file}] [-o|--output {file}] [-r|--order {order}]",
		"convert a plain sector image into a nibble image",
		"\nUse the nibblize command to convert a plain sector image ('.do', '.po') into a nibble image. When no order is given, it is derived from the input file extension.",
		"", runnerHelpEpilogue, n.Run)

	n.AddBaseSettings()
	n.AddSetting(&n.File, "input", "i", "", nil, "sector image file", true)
	n.AddSetting(&n.Out, "output", "o", "", nil, "output nibble image file",
		true)
	n.AddSetting(&n.Order, "order", "r", "", "",
		"sector order of the input (physical|dos|prodos|cpm)", false)

	return n
}

//
type Nibblize struct {
	//
	Runner
	//
	File  string
	Out   string
	Order string
}

//
func (n *Nibblize) Run() error {

	n.ParseSettings()

	order := n.Order
	if order == "" {
		switch getExtension(n.File) {
		case "do", "dsk":
			order = "dos"
		case "po":
			order = "prodos"
		default:
			return fmt.Errorf(
				"cannot derive sector order from '%s', use --order", n.File)
		}
	}

	o, err := chunk.ParseOrder(order)
	if err != nil {
		return err
	}

	cfg, err := configForName(n.Format)
	if err != nil {
		return err
	}

	data, err := ioutil.ReadFile(n.File)
	if err != nil {
		return err
	}

	img, err := image.Nibblize(data, cfg, o)
	if err != nil {
		return err
	}

	if err := saveImage(img, n.Out); err != nil {
		return err
	}

	fmt.Printf("nibblized %s (%s order) into %s\n", n.File, o, n.Out)
	return nil
}
