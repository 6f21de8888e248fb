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

package main

import (
	"fmt"
	"os"

	"github.com/xelalexv/nibworks/pkg/run"
)

//
var NibWorksVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: nibctl {info|dump|blank|nibblize|version} ...

run 'nibctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nNibWorks %s\n\n", NibWorksVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "info":
		run.DieOnError(run.NewInfo().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "blank":
		run.DieOnError(run.NewBlank().Execute(args))

	case "nibblize":
		run.DieOnError(run.NewNibblize().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
