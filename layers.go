/*
Copyright (C) 2026 the monsoon-pod authors.
This file is part of monsoon-pod.

monsoon-pod is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

monsoon-pod is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with monsoon-pod.  If not, see <http://www.gnu.org/licenses/>.
*/

package monsoonpod

import (
	"math"

	"github.com/savannahferretti/monsoon-pod/grid"
)

// LayerMean returns the pressure-weighted mean of a field over the layer
// between the boundary pressures b and a [hPa], where a is the boundary
// nearer the surface (numerically larger). The field is sampled at the
// ascending pressure levels lev and treated as piecewise linear between
// samples: the mean is the definite integral from b to a divided by the
// layer thickness.
//
// The integral is assembled from the trapezoids between the sample levels
// inside the closed interval plus partial trapezoids at each boundary,
// whose field values come from linear interpolation within the bracketing
// level pair. Brackets are nudged at the axis ends so the interpolation
// thickness is never zero; boundaries beyond the axis extrapolate
// linearly. When both boundaries fall between the same two levels the
// mean reduces to a single trapezoid between the interpolated boundary
// values.
//
// A constant field averages to that constant exactly, and a field linear
// in pressure averages to the arithmetic mean of its values at a and b,
// independent of the interior sample spacing.
func LayerMean(lev, field []float64, b, a float64) float64 {
	n := len(lev)
	if n < 2 || !(a > b) {
		return math.NaN()
	}

	ia := grid.SearchRight(lev, a) // greatest level <= a
	ib := grid.SearchLeft(lev, b)  // smallest level >= b
	fa := interpLevel(lev, field, a, ia, ia+1)
	fb := interpLevel(lev, field, b, ib-1, ib)

	if ia < ib {
		// No sample level inside [b, a].
		return 0.5 * (fa + fb)
	}

	integral := 0.
	for k := ib; k < ia; k++ {
		integral += 0.5 * (field[k] + field[k+1]) * (lev[k+1] - lev[k])
	}
	integral += 0.5 * (fa + field[ia]) * (a - lev[ia])
	integral += 0.5 * (fb + field[ib]) * (lev[ib] - b)
	return integral / (a - b)
}

// interpLevel linearly interpolates field at pressure p using the level
// bracket [lo, hi], clamping the bracket into the axis when p falls at or
// beyond either end.
func interpLevel(lev, field []float64, p float64, lo, hi int) float64 {
	n := len(lev)
	if lo < 0 {
		lo, hi = 0, 1
	}
	if hi > n-1 {
		lo, hi = n-2, n-1
	}
	w := (p - lev[lo]) / (lev[hi] - lev[lo])
	return field[lo] + w*(field[hi]-field[lo])
}
