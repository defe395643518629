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

// Command monsoonpod runs the plume-buoyancy precipitation diagnostic on
// a preprocessed profile dataset and writes region-by-month binned
// statistics. Dataset acquisition, regridding and resampling are handled
// upstream; this command demonstrates the pipeline on a synthetic
// monsoon-season profile when no input hook is wired in.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	monsoonpod "github.com/savannahferretti/monsoon-pod"
	"github.com/savannahferretti/monsoon-pod/grid"
)

func main() {
	log.Println("\n",
		"----------------------------------------------------------\n",
		"        Monsoon precipitation-buoyancy diagnostic\n",
		"             version "+monsoonpod.Version+" ("+monsoonpod.Website+")\n",
		"----------------------------------------------------------")

	configFile := flag.String("config", "", "Path to TOML configuration file (default configuration if empty)")
	regionFile := flag.String("regions", "", "Optional shapefile of region boundaries (bounding boxes are used)")
	regionField := flag.String("regionfield", "NAME", "Shapefile attribute holding the region name")
	outFile := flag.String("o", "stats.json", "Path for the JSON statistics output")
	byYear := flag.Bool("byyear", true, "Process the time series one calendar year at a time to conserve memory")
	flag.Parse()

	cfg := monsoonpod.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg, err = monsoonpod.ReadConfig(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
	if *regionFile != "" {
		regions, err := monsoonpod.RegionsFromShapefile(*regionFile, *regionField)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Regions = regions
	}
	e := new(monsoonpod.ErrCat)
	e.Add(cfg.Check())
	if err := e.Err(); err != nil {
		log.Fatalf("The following configuration errors were found:\n%v", err)
	}

	consts := monsoonpod.DefaultConstants()
	prof := demoProfile()

	p := monsoonpod.NewPipeline(consts)
	var fields *monsoonpod.BuoyancyFields
	var err error
	if *byYear {
		fields, err = p.ComputeByYear(prof)
	} else {
		fields, err = p.Compute(prof)
	}
	if err != nil {
		log.Fatal(err)
	}

	agg, err := monsoonpod.NewAggregator(cfg, consts)
	if err != nil {
		log.Fatal(err)
	}
	table, err := agg.Aggregate(fields)
	if err != nil {
		log.Fatal(err)
	}

	if summary, err := table.SummaryTable(); err == nil {
		summary.Tabbed(os.Stdout)
	}

	out, err := os.Create(*outFile)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonTable(table)); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote statistics to %s.", *outFile)
}

// demoProfile builds a synthetic two-year JJAS monsoon-season profile
// over the Indian Ocean sector: a moist-adiabat-like temperature
// structure, humidity decaying with height, and precipitation loosely
// tied to low-level humidity.
func demoProfile() *monsoonpod.Profile {
	lev := make([]float64, 19) // 100..1000 hPa
	for i := range lev {
		lev[i] = 100. + 50.*float64(i)
	}
	var times []time.Time
	for _, year := range []int{2020, 2021} {
		t := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.October, 1, 0, 0, 0, 0, time.UTC)
		for t.Before(end) {
			times = append(times, t)
			t = t.AddDate(0, 0, 1)
		}
	}
	lat := make([]float64, 25) // -6..30
	for i := range lat {
		lat[i] = -6. + 1.5*float64(i)
	}
	lon := make([]float64, 19) // 55..100
	for i := range lon {
		lon[i] = 55. + 2.5*float64(i)
	}

	T, err := grid.NewVar4(lev, times, lat, lon)
	if err != nil {
		log.Fatal(err)
	}
	Q, err := grid.NewVar4(lev, times, lat, lon)
	if err != nil {
		log.Fatal(err)
	}
	PS, err := grid.NewVar3(times, lat, lon)
	if err != nil {
		log.Fatal(err)
	}
	PR, err := grid.NewVar3(times, lat, lon)
	if err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	for it := range times {
		phase := 2. * math.Pi * float64(it) / 40.
		for ilat := range lat {
			for ilon := range lon {
				ts := 300. + 2.*math.Cos(lat[ilat]*math.Pi/180.*3.) +
					0.5*math.Sin(phase+float64(ilon)/5.)
				qs := 0.018 + 0.004*math.Sin(phase) + 0.002*rng.Float64()
				PS.Set(1000.+8.*math.Sin(float64(ilon)/3.), it, ilat, ilon)
				for ilev := range lev {
					frac := lev[ilev] / 1000.
					T.Set(ts*math.Pow(frac, 0.19), ilev, it, ilat, ilon)
					Q.Set(qs*math.Pow(frac, 3.), ilev, it, ilat, ilon)
				}
				rain := 80. * (qs - 0.017) * (1. + rng.Float64())
				if rain < 0. {
					rain = 0.
				}
				PR.Set(rain, it, ilat, ilon)
			}
		}
	}
	return &monsoonpod.Profile{T: T, Q: Q, PS: PS, Precip: PR}
}

// jsonStats mirrors the binned statistics of one (region, month) cell in
// a serialization-friendly shape.
type jsonStats struct {
	Region string `json:"region"`
	Month  int    `json:"month"`

	BLEdges []float64 `json:"bl_edges,omitempty"`
	Q0      []float64 `json:"q0,omitempty"`
	QE      []float64 `json:"qe,omitempty"`
	Q1      []float64 `json:"q1,omitempty"`

	SubsatEdges []float64 `json:"subsat_edges,omitempty"`
	CapeEdges   []float64 `json:"cape_edges,omitempty"`
	P0          []float64 `json:"p0,omitempty"`
	PE          []float64 `json:"pe,omitempty"`
	P1          []float64 `json:"p1,omitempty"`
}

type jsonOutput struct {
	History string      `json:"history"`
	Cells   []jsonStats `json:"cells"`
}

func jsonTable(t *monsoonpod.RegionMonthTable) *jsonOutput {
	out := &jsonOutput{History: t.History}
	for ri, region := range t.Regions {
		for mi, m := range t.Months {
			acc := t.Cells[ri][mi]
			cell := jsonStats{Region: region, Month: int(m)}
			if s := acc.Stats1D(); s != nil {
				cell.BLEdges = s.Edges
				cell.Q0 = s.Q0.Elements
				cell.QE = s.QE.Elements
				cell.Q1 = s.Q1.Elements
			}
			if s := acc.Stats2D(); s != nil {
				cell.SubsatEdges = s.SubsatEdges
				cell.CapeEdges = s.CapeEdges
				cell.P0 = s.P0.Elements
				cell.PE = s.PE.Elements
				cell.P1 = s.P1.Elements
			}
			out.Cells = append(out.Cells, cell)
		}
	}
	return out
}
