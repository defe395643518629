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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Mode selects which binned statistics an Accumulator produces.
type Mode int

const (
	// ModeBL bins points by the net buoyancy BL alone.
	ModeBL Mode = iota
	// ModeJoint bins points jointly by (SUBSAT, CAPE).
	ModeJoint
	// ModeBoth produces both sets of statistics in one pass.
	ModeBoth
)

// ParseMode converts a configuration string to a Mode. Anything other
// than "bl", "joint" or "both" is a configuration error.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bl":
		return ModeBL, nil
	case "joint":
		return ModeJoint, nil
	case "both":
		return ModeBoth, nil
	}
	return 0, fmt.Errorf("monsoonpod: unknown accumulation mode %q "+
		"(must be \"bl\", \"joint\" or \"both\")", s)
}

func (m Mode) String() string {
	switch m {
	case ModeBL:
		return "bl"
	case ModeJoint:
		return "joint"
	case ModeBoth:
		return "both"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Edges returns the ordered bin edges min, min+width, ..., including max
// when it falls exactly on a step.
func (s BinSpec) Edges() []float64 {
	n := int(math.Ceil((s.Max-s.Min)/s.Width)) + 1
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = s.Min + float64(i)*s.Width
	}
	return edges
}

// Index returns the bin index of v under nearest-edge rounding, the
// convention used for the one-dimensional BL statistics. The result may
// fall outside [0, len(Edges())).
func (s BinSpec) Index(v float64) int {
	return int(math.Floor((v-s.Min)/s.Width + 0.5))
}

// IndexJoint returns the bin index of v under the opposite-sign rounding
// used for the two-dimensional (SUBSAT, CAPE) statistics. The asymmetry
// with Index is preserved from the reference formulation on purpose.
func (s BinSpec) IndexJoint(v float64) int {
	return int(math.Floor((v-s.Min)/s.Width - 0.5))
}

// Stats1D holds statistics binned by BL: for each bin, the total point
// count Q0, the count QE of points whose precipitation exceeds the
// threshold, and the precipitation sum Q1.
type Stats1D struct {
	Edges      []float64
	Q0, QE, Q1 *sparse.DenseArray
}

// Stats2D holds statistics binned jointly by (SUBSAT, CAPE): total count
// P0, exceedance count PE and precipitation sum P1, indexed by
// (subsat bin, cape bin).
type Stats2D struct {
	SubsatEdges, CapeEdges []float64
	P0, PE, P1             *sparse.DenseArray
}

// Accumulator folds per-point (BL, CAPE, SUBSAT, precipitation) records
// into binned statistics in a single pass. Points with non-finite
// precipitation, a non-finite binning variable, or an out-of-range bin
// index are silently dropped. Accumulation is commutative and
// associative: partial accumulators over any partition of the input merge
// to the same result as one pass over the whole input.
type Accumulator struct {
	mode      Mode
	threshold float64
	bl        BinSpec
	cape      BinSpec
	subsat    BinSpec
	s1        *Stats1D
	s2        *Stats2D
}

// NewAccumulator builds an accumulator from the configuration, failing
// fast on an invalid mode or bin parameters before any computation.
func NewAccumulator(cfg *Config) (*Accumulator, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	a := &Accumulator{
		mode:      mode,
		threshold: cfg.PrecipThreshold,
		bl:        cfg.Bins["bl"],
		cape:      cfg.Bins["cape"],
		subsat:    cfg.Bins["subsat"],
	}
	if mode == ModeBL || mode == ModeBoth {
		edges := a.bl.Edges()
		a.s1 = &Stats1D{
			Edges: edges,
			Q0:    sparse.ZerosDense(len(edges)),
			QE:    sparse.ZerosDense(len(edges)),
			Q1:    sparse.ZerosDense(len(edges)),
		}
	}
	if mode == ModeJoint || mode == ModeBoth {
		se, ce := a.subsat.Edges(), a.cape.Edges()
		a.s2 = &Stats2D{
			SubsatEdges: se,
			CapeEdges:   ce,
			P0:          sparse.ZerosDense(len(se), len(ce)),
			PE:          sparse.ZerosDense(len(se), len(ce)),
			P1:          sparse.ZerosDense(len(se), len(ce)),
		}
	}
	return a, nil
}

// Mode returns the accumulation mode.
func (a *Accumulator) Mode() Mode { return a.mode }

// Stats1D returns the BL-binned statistics, or nil if the mode does not
// produce them.
func (a *Accumulator) Stats1D() *Stats1D { return a.s1 }

// Stats2D returns the (SUBSAT, CAPE)-binned statistics, or nil if the
// mode does not produce them.
func (a *Accumulator) Stats2D() *Stats2D { return a.s2 }

// Add folds one point into the statistics.
func (a *Accumulator) Add(bl, cape, subsat, precip float64) {
	if math.IsNaN(precip) || math.IsInf(precip, 0) {
		return
	}
	exceeds := precip > a.threshold
	if a.s1 != nil && !math.IsNaN(bl) && !math.IsInf(bl, 0) {
		if i := a.bl.Index(bl); i >= 0 && i < len(a.s1.Edges) {
			a.s1.Q0.Elements[i]++
			a.s1.Q1.Elements[i] += precip
			if exceeds {
				a.s1.QE.Elements[i]++
			}
		}
	}
	if a.s2 != nil &&
		!math.IsNaN(subsat) && !math.IsInf(subsat, 0) &&
		!math.IsNaN(cape) && !math.IsInf(cape, 0) {
		is := a.subsat.IndexJoint(subsat)
		ic := a.cape.IndexJoint(cape)
		if is >= 0 && is < len(a.s2.SubsatEdges) && ic >= 0 && ic < len(a.s2.CapeEdges) {
			i := is*len(a.s2.CapeEdges) + ic
			a.s2.P0.Elements[i]++
			a.s2.P1.Elements[i] += precip
			if exceeds {
				a.s2.PE.Elements[i]++
			}
		}
	}
}

// AddFields folds every valid point of f into the statistics.
func (a *Accumulator) AddFields(f *BuoyancyFields) {
	for i, ok := range f.Valid {
		if !ok {
			continue
		}
		a.Add(f.BL.Data.Elements[i], f.CAPE.Data.Elements[i],
			f.SUBSAT.Data.Elements[i], f.Precip.Data.Elements[i])
	}
}

// Merge adds the statistics accumulated in b into a elementwise. The two
// accumulators must share mode and bin parameters. Merge is the reduction
// step for sharding an input stream across parallel workers.
func (a *Accumulator) Merge(b *Accumulator) error {
	if a.mode != b.mode || a.threshold != b.threshold ||
		a.bl != b.bl || a.cape != b.cape || a.subsat != b.subsat {
		return fmt.Errorf("monsoonpod: cannot merge accumulators with different parameters")
	}
	if a.s1 != nil {
		addElements(a.s1.Q0, b.s1.Q0)
		addElements(a.s1.QE, b.s1.QE)
		addElements(a.s1.Q1, b.s1.Q1)
	}
	if a.s2 != nil {
		addElements(a.s2.P0, b.s2.P0)
		addElements(a.s2.PE, b.s2.PE)
		addElements(a.s2.P1, b.s2.P1)
	}
	return nil
}

func addElements(dst, src *sparse.DenseArray) {
	for i, v := range src.Elements {
		dst.Elements[i] += v
	}
}
