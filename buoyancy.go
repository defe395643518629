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

	"github.com/savannahferretti/monsoon-pod/grid"
)

// Profile is the gridded input to the diagnostic. T and Q share the same
// (lev, time, lat, lon) axes; PS and Precip share the (time, lat, lon)
// axes of T and Q. Units: T in K, Q in kg/kg, PS in hPa, Precip in
// mm/day.
type Profile struct {
	T      *grid.Var4
	Q      *grid.Var4
	PS     *grid.Var3
	Precip *grid.Var3
}

// Check verifies that the profile variables share axes.
func (p *Profile) Check() error {
	if p.T == nil || p.Q == nil || p.PS == nil || p.Precip == nil {
		return fmt.Errorf("monsoonpod: profile has a nil variable")
	}
	if len(p.T.Lev) != len(p.Q.Lev) || len(p.T.Time) != len(p.Q.Time) ||
		len(p.T.Lat) != len(p.Q.Lat) || len(p.T.Lon) != len(p.Q.Lon) {
		return fmt.Errorf("monsoonpod: temperature and humidity axes do not match")
	}
	if len(p.PS.Time) != len(p.T.Time) || len(p.PS.Lat) != len(p.T.Lat) ||
		len(p.PS.Lon) != len(p.T.Lon) {
		return fmt.Errorf("monsoonpod: surface pressure axes do not match the profile")
	}
	if err := p.PS.SameShape(p.Precip); err != nil {
		return fmt.Errorf("monsoonpod: precipitation axes do not match the profile: %v", err)
	}
	return nil
}

// BuoyancyFields holds the per-point diagnostic terms over
// (time, lat, lon): the layer weights, the CAPE-like and
// subsaturation-like terms [K], the net buoyancy BL [m/s2] and the
// co-located precipitation [mm/day]. Valid flags, in the flat
// (time, lat, lon) index order of the arrays, mark columns deep enough
// to hold a boundary layer above the free-troposphere top; all fields of
// an invalid point are NaN.
type BuoyancyFields struct {
	WB     *grid.Var3
	WL     *grid.Var3
	CAPE   *grid.Var3
	SUBSAT *grid.Var3
	BL     *grid.Var3
	Precip *grid.Var3
	Valid  []bool
}

func newBuoyancyFields(ps *grid.Var3) (*BuoyancyFields, error) {
	f := new(BuoyancyFields)
	var err error
	for _, v := range []**grid.Var3{&f.WB, &f.WL, &f.CAPE, &f.SUBSAT, &f.BL, &f.Precip} {
		*v, err = grid.NewVar3(ps.Time, ps.Lat, ps.Lon)
		if err != nil {
			return nil, err
		}
	}
	f.Valid = make([]bool, len(ps.Time)*len(ps.Lat)*len(ps.Lon))
	return f, nil
}

// Pipeline computes buoyancy fields from profiles.
type Pipeline struct {
	c  Constants
	th *Thermo
}

// NewPipeline returns a Pipeline using the given constants.
func NewPipeline(c Constants) *Pipeline {
	return &Pipeline{c: c, th: NewThermo(c)}
}

// Compute derives the buoyancy fields for every (time, lat, lon) point of
// the profile. Numerically invalid states propagate as NaN and are
// dropped later at the binning stage; only structural problems (axis
// mismatches) are errors.
func (p *Pipeline) Compute(prof *Profile) (*BuoyancyFields, error) {
	if err := prof.Check(); err != nil {
		return nil, err
	}
	out, err := newBuoyancyFields(prof.PS)
	if err != nil {
		return nil, err
	}
	p.computeRange(prof, 0, len(prof.T.Time), out)
	return out, nil
}

// computeRange fills out for time indices [t0, t1).
func (p *Pipeline) computeRange(prof *Profile, t0, t1 int, out *BuoyancyFields) {
	nlev := len(prof.T.Lev)
	lev := prof.T.Lev
	tcol := make([]float64, nlev)
	qcol := make([]float64, nlev)
	thetae := make([]float64, nlev)
	thetaes := make([]float64, nlev)

	for it := t0; it < t1; it++ {
		for ilat := range prof.T.Lat {
			for ilon := range prof.T.Lon {
				ps := prof.PS.Get(it, ilat, ilon)
				i := out.BL.Index1d(it, ilat, ilon)
				if !(ps > p.c.LFTTop) {
					// Column too shallow to hold a boundary layer above
					// the free-troposphere top.
					setPoint(out, i, math.NaN(), math.NaN(), math.NaN(),
						math.NaN(), math.NaN(), math.NaN(), false)
					continue
				}
				tcol = prof.T.Column(tcol, it, ilat, ilon)
				qcol = prof.Q.Column(qcol, it, ilat, ilon)
				p.th.ThetaEColumns(lev, tcol, qcol, thetae, thetaes)

				blTop := ps - p.c.BLDepth
				thetaeBL := LayerMean(lev, thetae, blTop, ps)
				thetaeLFT := LayerMean(lev, thetae, p.c.LFTTop, blTop)
				thetaesLFT := LayerMean(lev, thetaes, p.c.LFTTop, blTop)

				wb, wl := layerWeights(ps, blTop, p.c.LFTTop)
				cape := (thetaeBL - thetaesLFT) / thetaesLFT * p.c.ThetaE0
				subsat := (thetaesLFT - thetaeLFT) / thetaesLFT * p.c.ThetaE0
				bl := p.c.Gravity / (p.c.KappaL * p.c.ThetaE0) *
					(wb*cape - wl*subsat)

				setPoint(out, i, wb, wl, cape, subsat, bl,
					prof.Precip.Get(it, ilat, ilon), true)
			}
		}
	}
}

func setPoint(out *BuoyancyFields, i int, wb, wl, cape, subsat, bl, precip float64, valid bool) {
	out.WB.Data.Elements[i] = wb
	out.WL.Data.Elements[i] = wl
	out.CAPE.Data.Elements[i] = cape
	out.SUBSAT.Data.Elements[i] = subsat
	out.BL.Data.Elements[i] = bl
	out.Precip.Data.Elements[i] = precip
	out.Valid[i] = valid
}

// layerWeights returns the boundary-layer and free-tropospheric weights
// for a column with surface pressure ps, boundary-layer top blTop and
// free-troposphere top lftTop [hPa]. The weights sum to one exactly by
// construction and both lie in (0, 1) for positive layer thicknesses.
func layerWeights(ps, blTop, lftTop float64) (wb, wl float64) {
	dpB := ps - blTop
	dpL := blTop - lftTop
	wb = dpB / dpL * math.Log(1.+dpL/dpB)
	return wb, 1. - wb
}
