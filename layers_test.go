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
	"testing"
)

const layerTolerance = 1e-12

func TestLayerMeanConstant(t *testing.T) {
	lev := []float64{500, 600, 700, 800, 900, 1000}
	field := make([]float64, len(lev))
	for k := range field {
		field[k] = 42.
	}
	cases := []struct{ b, a float64 }{
		{550, 950},  // boundaries between levels, several interior samples
		{500, 1000}, // boundaries on the end levels
		{600, 900},  // boundaries exactly on interior levels
		{820, 870},  // both boundaries between the same two levels
		{880, 900},  // one boundary on a level, the other inside the same gap
	}
	for _, c := range cases {
		have := LayerMean(lev, field, c.b, c.a)
		if math.Abs(have-42.) > layerTolerance {
			t.Errorf("constant field over [%g, %g]: have %g but want 42", c.b, c.a, have)
		}
	}
}

func TestLayerMeanLinear(t *testing.T) {
	// A field equal to the pressure itself averages to the midpoint of
	// the boundaries exactly, independent of the interior samples.
	lev := []float64{500, 600, 700, 800, 900, 1000}
	field := append([]float64(nil), lev...)
	cases := []struct{ b, a, want float64 }{
		{550, 950, 750},
		{600, 900, 750},
		{500, 1000, 750},
		{820, 870, 845},
		{505, 515, 510},
	}
	for _, c := range cases {
		have := LayerMean(lev, field, c.b, c.a)
		if math.Abs(have-c.want) > layerTolerance {
			t.Errorf("linear field over [%g, %g]: have %g but want %g", c.b, c.a, have, c.want)
		}
	}
}

func TestLayerMeanLinearWithSlope(t *testing.T) {
	lev := []float64{500, 650, 700, 825, 900, 1000}
	field := make([]float64, len(lev))
	for k := range field {
		field[k] = 3.*lev[k] - 100.
	}
	b, a := 540., 980.
	want := 3.*(a+b)/2. - 100.
	have := LayerMean(lev, field, b, a)
	if math.Abs(have-want) > 1e-9 {
		t.Errorf("sloped field over [%g, %g]: have %g but want %g", b, a, have, want)
	}
}

func TestLayerMeanBoundariesBeyondAxis(t *testing.T) {
	// Boundaries outside the sampled levels extrapolate linearly rather
	// than producing a zero-thickness interpolation.
	lev := []float64{500, 600, 700, 800, 900, 1000}
	field := append([]float64(nil), lev...)
	have := LayerMean(lev, field, 450, 1050)
	if math.Abs(have-750.) > layerTolerance {
		t.Errorf("extrapolated boundaries: have %g but want 750", have)
	}
}

func TestLayerMeanDegenerateInterval(t *testing.T) {
	lev := []float64{500, 600, 700, 800, 900, 1000}
	field := append([]float64(nil), lev...)
	if have := LayerMean(lev, field, 700, 700); !math.IsNaN(have) {
		t.Errorf("zero-thickness layer: have %g but want NaN", have)
	}
	if have := LayerMean(lev, field, 800, 700); !math.IsNaN(have) {
		t.Errorf("inverted layer: have %g but want NaN", have)
	}
}

func TestLayerMeanNaNPropagation(t *testing.T) {
	lev := []float64{500, 600, 700, 800, 900, 1000}
	field := []float64{1, 1, math.NaN(), 1, 1, 1}
	if have := LayerMean(lev, field, 550, 950); !math.IsNaN(have) {
		t.Errorf("NaN sample inside the layer: have %g but want NaN", have)
	}
	// A NaN outside the layer and its boundary brackets does not affect
	// the result.
	field = []float64{math.NaN(), 1, 1, 1, 1, 1}
	if have := LayerMean(lev, field, 750, 950); math.Abs(have-1.) > layerTolerance {
		t.Errorf("NaN outside the layer: have %g but want 1", have)
	}
}
