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

package chunk

import (
	"fmt"
)

/*
	SectorOrder selects the interleave convention used to map logical sector
	numbers to physical sector positions. The tables are generated once and
	treated as read-only data.
*/
type SectorOrder int

const (
	OrderPhysical SectorOrder = iota
	OrderDOS
	OrderProDOS
	OrderCPM
)

//
func (o SectorOrder) String() string {
	switch o {
	case OrderPhysical:
		return "physical"
	case OrderDOS:
		return "dos"
	case OrderProDOS:
		return "prodos"
	case OrderCPM:
		return "cpm"
	}
	return "unknown"
}

//
func ParseOrder(s string) (SectorOrder, error) {
	switch s {
	case "physical", "linear":
		return OrderPhysical, nil
	case "dos":
		return OrderDOS, nil
	case "prodos":
		return OrderProDOS, nil
	case "cpm":
		return OrderCPM, nil
	}
	return 0, fmt.Errorf("unknown sector order: %s", s)
}

/*
	The DOS 3.3 RWTS order steps by -2 modulo 15 with sector 15 fixed, which
	the modulo-n interleave generator cannot express, so it is carried as the
	published literal table.
*/
var dosOrder16 = []int{
	0, 13, 11, 9, 7, 5, 3, 1, 14, 12, 10, 8, 6, 4, 2, 15,
}

/*
	generateSkew runs the interleave-increment algorithm: logical sector
	numbers are dealt onto physical slots advancing by the interleave, with
	occupied slots skipped forward. The filled table maps physical to logical;
	the returned inverse maps logical to physical, which is what sector
	translation consumes.
*/
func generateSkew(n, interleave int) []int {

	table := make([]int, n)
	for ix := range table {
		table[ix] = -1
	}

	entry := 0
	for ix := 0; ix < n; ix++ {
		for table[entry] != -1 {
			entry = (entry + 1) % n
		}
		table[entry] = ix
		entry = ((entry+interleave)%n + n) % n
	}

	inv := make([]int, n)
	for phys, logical := range table {
		inv[logical] = phys
	}
	return inv
}

// SkewTable returns the logical to physical sector mapping for an order.
func SkewTable(order SectorOrder, sectors int) []int {
	switch order {
	case OrderDOS:
		if sectors == 16 {
			return dosOrder16
		}
		// 13 sector disks are recorded in physical order
		return generateSkew(sectors, 1)
	case OrderProDOS:
		return generateSkew(sectors, 2)
	case OrderCPM:
		return generateSkew(sectors, 3)
	}
	return generateSkew(sectors, 1)
}
