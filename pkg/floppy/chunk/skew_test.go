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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
func isPermutation(t *testing.T, table []int, n int) {
	require.Len(t, table, n)
	seen := make([]bool, n)
	for _, v := range table {
		require.True(t, 0 <= v && v < n, "entry %d out of range", v)
		assert.False(t, seen[v], "entry %d duplicated", v)
		seen[v] = true
	}
}

//
func TestSkewTablesArePermutations(t *testing.T) {
	for _, o := range []SectorOrder{
		OrderPhysical, OrderDOS, OrderProDOS, OrderCPM,
	} {
		isPermutation(t, SkewTable(o, 16), 16)
		isPermutation(t, SkewTable(o, 13), 13)
	}
}

//
func TestDOSOrderMatchesRWTS(t *testing.T) {
	assert.Equal(t,
		[]int{0, 13, 11, 9, 7, 5, 3, 1, 14, 12, 10, 8, 6, 4, 2, 15},
		SkewTable(OrderDOS, 16))
}

//
func TestProDOSOrder(t *testing.T) {
	assert.Equal(t,
		[]int{0, 2, 4, 6, 8, 10, 12, 14, 1, 3, 5, 7, 9, 11, 13, 15},
		SkewTable(OrderProDOS, 16))
}

//
func TestPhysicalOrderIsIdentity(t *testing.T) {
	for ix, v := range SkewTable(OrderPhysical, 16) {
		assert.Equal(t, ix, v)
	}
	// 13 sector disks are recorded in physical order for every convention
	for ix, v := range SkewTable(OrderDOS, 13) {
		assert.Equal(t, ix, v)
	}
}

//
func TestParseOrder(t *testing.T) {

	for _, s := range []string{"physical", "dos", "prodos", "cpm"} {
		o, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, s, o.String())
	}

	o, err := ParseOrder("linear")
	require.NoError(t, err)
	assert.Equal(t, OrderPhysical, o)

	_, err = ParseOrder("bogus")
	assert.Error(t, err)
}
