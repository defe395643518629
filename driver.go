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
	"log"

	"github.com/savannahferretti/monsoon-pod/grid"
)

// ComputeByYear computes the same result as Compute, but walks the time
// axis one calendar year at a time so multi-year series keep their
// working set small. Each year is an independent partition; results are
// written into the shared output in time order, so the output is
// identical to a whole-series computation.
func (p *Pipeline) ComputeByYear(prof *Profile) (*BuoyancyFields, error) {
	if err := prof.Check(); err != nil {
		return nil, err
	}
	out, err := newBuoyancyFields(prof.PS)
	if err != nil {
		return nil, err
	}
	for _, yr := range grid.YearPartition(prof.T.Time) {
		log.Printf("Computing buoyancy for year %d (%d time steps)...",
			yr.Year, yr.End-yr.Start)
		p.computeRange(prof, yr.Start, yr.End, out)
	}
	return out, nil
}
