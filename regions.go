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
	"log"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"

	"github.com/savannahferretti/monsoon-pod/grid"
)

// RegionsFromShapefile reads region definitions from a shapefile,
// mapping the value of the attribute nameField to the bounding box of
// each shape. Boxes are what the diagnostic works with; the polygon
// interiors are not used.
func RegionsFromShapefile(path, nameField string) (map[string]grid.Box, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("monsoonpod: opening region shapefile: %v", err)
	}
	defer r.Close()

	fieldIndex := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(f.String(), nameField) {
			fieldIndex = i
			break
		}
	}
	if fieldIndex < 0 {
		return nil, fmt.Errorf("monsoonpod: region shapefile has no attribute %q", nameField)
	}

	regions := make(map[string]grid.Box)
	for r.Next() {
		n, s := r.Shape()
		name := strings.TrimSpace(r.ReadAttribute(n, fieldIndex))
		if name == "" {
			continue
		}
		b := s.BBox()
		regions[name] = grid.Box{
			LatMin: b.MinY, LatMax: b.MaxY,
			LonMin: b.MinX, LonMax: b.MaxX,
		}
	}
	return regions, nil
}

// RegionMonthTable holds binned statistics stacked over the Cartesian
// product of configured regions and the calendar months present in the
// input. Every cell is computed independently from the points belonging
// to its (region, month) subset.
type RegionMonthTable struct {
	Regions []string
	Months  []time.Month
	// Cells is indexed [region][month] following Regions and Months.
	Cells [][]*Accumulator
	// History records provenance of the computation.
	History string
}

// Cell returns the statistics for a (region, month) pair, or nil when the
// pair is not in the table.
func (t *RegionMonthTable) Cell(region string, m time.Month) *Accumulator {
	ri := sort.SearchStrings(t.Regions, region)
	if ri >= len(t.Regions) || t.Regions[ri] != region {
		return nil
	}
	for mi, mm := range t.Months {
		if mm == m {
			return t.Cells[ri][mi]
		}
	}
	return nil
}

// Aggregator computes region-by-month binned statistics from buoyancy
// fields.
type Aggregator struct {
	cfg    *Config
	consts Constants

	// Workers is the number of cells computed concurrently; zero means
	// one per CPU. Cells are independent, so each worker fills a local
	// accumulator and the partial results are gathered over a channel.
	Workers int
}

// NewAggregator returns an Aggregator for the given configuration,
// failing fast when the configuration is invalid.
func NewAggregator(cfg *Config, consts Constants) (*Aggregator, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &Aggregator{cfg: cfg, consts: consts}, nil
}

type cellResult struct {
	ri, mi int
	acc    *Accumulator
	err    error
}

// Aggregate bins every valid point of f into per-(region, month)
// statistics, preserving region names and month numbers as labels.
func (g *Aggregator) Aggregate(f *BuoyancyFields) (*RegionMonthTable, error) {
	regions := make([]string, 0, len(g.cfg.Regions))
	for name := range g.cfg.Regions {
		regions = append(regions, name)
	}
	sort.Strings(regions)

	groups := grid.MonthGroups(f.BL.Time)
	months := make([]time.Month, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	table := &RegionMonthTable{
		Regions: regions,
		Months:  months,
		Cells:   make([][]*Accumulator, len(regions)),
		History: fmt.Sprintf("Created on %s by %s (%s) from %s",
			time.Now().Format("2006-01-02"), g.consts.Author,
			g.consts.Email, g.consts.Source),
	}
	for ri := range table.Cells {
		table.Cells[ri] = make([]*Accumulator, len(months))
	}

	nWorkers := g.Workers
	if nWorkers <= 0 {
		nWorkers = runtime.GOMAXPROCS(0)
	}
	jobs := make(chan [2]int)
	results := make(chan cellResult)
	for w := 0; w < nWorkers; w++ {
		go func() {
			for job := range jobs {
				ri, mi := job[0], job[1]
				acc, err := g.accumulateCell(f, g.cfg.Regions[regions[ri]],
					groups[months[mi]])
				results <- cellResult{ri: ri, mi: mi, acc: acc, err: err}
			}
		}()
	}
	go func() {
		for ri := range regions {
			for mi := range months {
				jobs <- [2]int{ri, mi}
			}
		}
		close(jobs)
	}()

	var firstErr error
	for i := 0; i < len(regions)*len(months); i++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		table.Cells[res.ri][res.mi] = res.acc
	}
	if firstErr != nil {
		return nil, firstErr
	}
	log.Printf("Aggregated %d regions x %d months.", len(regions), len(months))
	return table, nil
}

// accumulateCell bins the points of one (region, month) subset into a
// fresh local accumulator.
func (g *Aggregator) accumulateCell(f *BuoyancyFields, box grid.Box, timeIdx []int) (*Accumulator, error) {
	acc, err := NewAccumulator(g.cfg)
	if err != nil {
		return nil, err
	}
	lat0, lat1, ok := grid.IndexRange(f.BL.Lat, box.LatMin, box.LatMax)
	if !ok {
		return acc, nil // region outside the data; labels still apply
	}
	lon0, lon1, ok := grid.IndexRange(f.BL.Lon, box.LonMin, box.LonMax)
	if !ok {
		return acc, nil
	}
	for _, it := range timeIdx {
		for ilat := lat0; ilat <= lat1; ilat++ {
			for ilon := lon0; ilon <= lon1; ilon++ {
				i := f.BL.Index1d(it, ilat, ilon)
				if !f.Valid[i] {
					continue
				}
				acc.Add(f.BL.Data.Elements[i], f.CAPE.Data.Elements[i],
					f.SUBSAT.Data.Elements[i], f.Precip.Data.Elements[i])
			}
		}
	}
	return acc, nil
}
