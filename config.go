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
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/savannahferretti/monsoon-pod/grid"
)

// Constants holds the physical and reference constants used throughout
// the pipeline. It is passed by value into each component at
// construction and never mutated.
type Constants struct {
	Rd      float64 // gas constant of dry air [J/(kg K)]
	Rv      float64 // gas constant of water vapor [J/(kg K)]
	Gravity float64 // [m/s2]
	ThetaE0 float64 // reference equivalent potential temperature [K]
	KappaL  float64 // lower-tropospheric damping constant [-]
	BLDepth float64 // boundary-layer thickness above the surface [hPa]
	LFTTop  float64 // top of the lower free troposphere [hPa]

	// Provenance stamps carried onto output tables.
	Source string
	Author string
	Email  string
}

// DefaultConstants returns the constants used by the published
// diagnostic.
func DefaultConstants() Constants {
	return Constants{
		Rd:      287.04,
		Rv:      461.5,
		Gravity: 9.81,
		ThetaE0: 340.,
		KappaL:  3.,
		BLDepth: 100.,
		LFTTop:  500.,
		Source:  "ERA5/IMERG",
		Author:  "Savannah L. Ferretti",
		Email:   "savannah.ferretti@uci.edu",
	}
}

func (c Constants) epsilon() float64 { return c.Rd / c.Rv }

// BinSpec defines equal-width histogram bins for one variable.
type BinSpec struct {
	Min   float64
	Max   float64
	Width float64
}

// Config is the full configuration surface of the diagnostic: region
// definitions, bin parameters per variable, the precipitation threshold,
// and the accumulation mode. It carries plain values; file parsing
// belongs to the caller (see ReadConfig).
type Config struct {
	// Mode selects the accumulation mode: "bl", "joint" or "both".
	Mode string

	// PrecipThreshold is the precipitating/non-precipitating cutoff
	// [mm/day] for the exceedance counts.
	PrecipThreshold float64

	// Bins holds bin parameters for the variables "bl", "cape" and
	// "subsat".
	Bins map[string]BinSpec

	// Regions maps region names to inclusive lat/lon boxes.
	Regions map[string]grid.Box
}

// DefaultConfig returns the configuration used by the published monsoon
// diagnostic: South Asian analysis regions and JJAS-scale bin schemes.
func DefaultConfig() *Config {
	return &Config{
		Mode:            "both",
		PrecipThreshold: 0.25,
		Bins: map[string]BinSpec{
			"bl":     {Min: -0.6, Max: 0.15, Width: 0.0075},
			"cape":   {Min: -40., Max: 20., Width: 1.},
			"subsat": {Min: -5., Max: 45., Width: 1.},
		},
		Regions: map[string]grid.Box{
			"Arabian Sea":      {LatMin: 10., LatMax: 20., LonMin: 60., LonMax: 70.},
			"Bay of Bengal":    {LatMin: 10., LatMax: 20., LonMin: 85., LonMax: 95.},
			"Central India":    {LatMin: 18., LatMax: 26., LonMin: 74., LonMax: 84.},
			"Eq. Indian Ocean": {LatMin: -5., LatMax: 5., LonMin: 70., LonMax: 90.},
		},
	}
}

// ReadConfig decodes a TOML configuration and validates it.
func ReadConfig(r io.Reader) (*Config, error) {
	c := new(Config)
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("monsoonpod: decoding configuration: %v", err)
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Check validates the configuration, collecting all problems so they can
// be fixed at once instead of one per run.
func (c *Config) Check() error {
	e := new(ErrCat)
	if _, err := ParseMode(c.Mode); err != nil {
		e.Add(err)
	}
	if c.PrecipThreshold < 0 {
		e.Add(fmt.Errorf("monsoonpod: precipitation threshold must not be "+
			"negative, have %g", c.PrecipThreshold))
	}
	for _, name := range []string{"bl", "cape", "subsat"} {
		s, ok := c.Bins[name]
		if !ok {
			e.Add(fmt.Errorf("monsoonpod: missing bin parameters for variable %q", name))
			continue
		}
		if s.Width <= 0 {
			e.Add(fmt.Errorf("monsoonpod: bin width for %q must be positive, have %g", name, s.Width))
		}
		if s.Max <= s.Min {
			e.Add(fmt.Errorf("monsoonpod: bin range for %q is empty: [%g, %g]", name, s.Min, s.Max))
		}
	}
	if len(c.Regions) == 0 {
		e.Add(fmt.Errorf("monsoonpod: no regions are configured"))
	}
	for name, box := range c.Regions {
		if err := box.Check(); err != nil {
			e.Add(fmt.Errorf("monsoonpod: region %q: %v", name, err))
		}
	}
	return e.Err()
}

// The ErrCat type and methods collect errors while the program is running
// and then report them later so that all errors can be seen and fixed at
// once, instead of just the first one.
type ErrCat struct {
	str string
}

// Add adds an error to the collection if it is not nil and not already
// present.
func (e *ErrCat) Add(err error) {
	if err != nil && !strings.Contains(e.str, err.Error()) {
		e.str += err.Error() + "\n"
	}
}

// Err converts the collection to a single error, or nil if nothing was
// collected.
func (e *ErrCat) Err() error {
	if e.str != "" {
		return fmt.Errorf("%s", strings.TrimSuffix(e.str, "\n"))
	}
	return nil
}
