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

import "math"

const tmelt = 273.15 // K

// Thermo computes moist-thermodynamic state variables. All pressures are
// in hPa, temperatures in K and humidities in kg/kg. Physically invalid
// inputs yield NaN rather than errors; non-finite values are excluded
// later at the binning stage.
type Thermo struct {
	c Constants
}

// NewThermo returns a Thermo using the given constants.
func NewThermo(c Constants) *Thermo {
	return &Thermo{c: c}
}

// SatVaporPres returns the empirical saturation vapor pressure [hPa] at
// temperature T [K], using the formulas of Huang (2018). The liquid-water
// branch applies above 0 degC and the ice branch at or below it; the hard
// switch at the melting point is intentional.
func (th *Thermo) SatVaporPres(T float64) float64 {
	tc := T - tmelt
	var es float64 // Pa
	if tc > 0. {
		es = math.Exp(34.494-4924.99/(tc+237.1)) / math.Pow(tc+105., 1.57)
	} else {
		es = math.Exp(43.494-6545.8/(tc+278.)) / math.Pow(tc+868., 2.)
	}
	return es / 100.
}

// SatHumidity returns the saturation specific humidity [kg/kg] at
// pressure p [hPa] and temperature T [K]. When the saturation vapor
// pressure reaches the total pressure the result is non-finite, which is
// expected only outside physically valid ranges.
func (th *Thermo) SatHumidity(p, T float64) float64 {
	eps := th.c.epsilon()
	es := th.SatVaporPres(T)
	q := eps * es / (p - es*(1.-eps))
	if p <= es*(1.-eps) {
		return math.NaN()
	}
	return q
}

// ThetaE returns the equivalent potential temperature [K] following
// Bolton (1980), at pressure p [hPa], temperature T [K] and specific
// humidity q [kg/kg]. lev is the pressure-level coordinate value [hPa]
// of the sample, which the reference formulation uses as the total
// pressure when forming the partial vapor pressure; that reading is
// preserved here. Near e -> 0 or T_L -> 0 the result is NaN; no clamping
// is applied.
func (th *Thermo) ThetaE(lev, p, T, q float64) float64 {
	eps := th.c.epsilon()
	r := q / (1. - q)
	e := lev * r / (eps + r)
	tl := 2840./(3.5*math.Log(T)-math.Log(e)-4.805) + 55.
	return T * math.Pow(1000./p, 0.2854*(1.-0.28*r)) *
		math.Exp((3.376/tl-0.00254)*1000.*r*(1.+0.81*r))
}

// ThetaEColumns fills thetae and thetaes with the actual and saturated
// equivalent potential temperature profiles for the given temperature and
// humidity columns sampled on lev. The slices must all share the length
// of lev.
func (th *Thermo) ThetaEColumns(lev, T, q, thetae, thetaes []float64) {
	for k, p := range lev {
		thetae[k] = th.ThetaE(p, p, T[k], q[k])
		qs := th.SatHumidity(p, T[k])
		thetaes[k] = th.ThetaE(p, p, T[k], qs)
	}
}
