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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"

	"github.com/savannahferretti/monsoon-pod/grid"
)

// singlePointFields builds a buoyancy field set with exactly one valid
// point at the given (lat, lon) on one June day.
func singlePointFields(t *testing.T, bl, cape, subsat, precip float64) *BuoyancyFields {
	t.Helper()
	times := []time.Time{time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)}
	lat := []float64{15.}
	lon := []float64{65.}
	f := new(BuoyancyFields)
	for _, v := range []**grid.Var3{&f.WB, &f.WL, &f.CAPE, &f.SUBSAT, &f.BL, &f.Precip} {
		var err error
		*v, err = grid.NewVar3(times, lat, lon)
		if err != nil {
			t.Fatal(err)
		}
	}
	f.Valid = []bool{true}
	f.BL.Set(bl, 0, 0, 0)
	f.CAPE.Set(cape, 0, 0, 0)
	f.SUBSAT.Set(subsat, 0, 0, 0)
	f.Precip.Set(precip, 0, 0, 0)
	return f
}

func TestAggregateSinglePoint(t *testing.T) {
	f := singlePointFields(t, 0.04, 2.3, 5.2, 3.)
	agg, err := NewAggregator(testConfig("both"), DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	table, err := agg.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Regions) != 1 || table.Regions[0] != "Test" {
		t.Fatalf("region labels: have %v but want [Test]", table.Regions)
	}
	if len(table.Months) != 1 || table.Months[0] != time.June {
		t.Fatalf("month labels: have %v but want [June]", table.Months)
	}
	acc := table.Cell("Test", time.June)
	if acc == nil {
		t.Fatal("cell lookup failed")
	}
	s1 := acc.Stats1D()
	for i := range s1.Q0.Elements {
		wantQ0, wantQE, wantQ1 := 0., 0., 0.
		if i == 10 { // the bin holding bl=0.04
			wantQ0, wantQE, wantQ1 = 1., 1., 3.
		}
		if s1.Q0.Elements[i] != wantQ0 || s1.QE.Elements[i] != wantQE ||
			math.Abs(s1.Q1.Elements[i]-wantQ1) > 1e-12 {
			t.Errorf("1-D bin %d: have (%g, %g, %g) but want (%g, %g, %g)", i,
				s1.Q0.Elements[i], s1.QE.Elements[i], s1.Q1.Elements[i],
				wantQ0, wantQE, wantQ1)
		}
	}
	s2 := acc.Stats2D()
	wantIdx := 4*len(s2.CapeEdges) + 11 // subsat=5.2, cape=2.3
	for i := range s2.P0.Elements {
		want := 0.
		if i == wantIdx {
			want = 1.
		}
		if s2.P0.Elements[i] != want || s2.PE.Elements[i] != want {
			t.Errorf("2-D bin %d: have (%g, %g) but want (%g, %g)", i,
				s2.P0.Elements[i], s2.PE.Elements[i], want, want)
		}
	}
	if table.Cell("Nowhere", time.June) != nil {
		t.Error("lookup of an unconfigured region returned a cell")
	}
	if !strings.Contains(table.History, DefaultConstants().Author) {
		t.Errorf("history lacks provenance: %q", table.History)
	}
}

func TestAggregateRegionOutsideData(t *testing.T) {
	f := singlePointFields(t, 0.04, 2.3, 5.2, 3.)
	cfg := testConfig("bl")
	cfg.Regions["Elsewhere"] = grid.Box{LatMin: -60, LatMax: -50, LonMin: 0, LonMax: 10}
	agg, err := NewAggregator(cfg, DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	table, err := agg.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	acc := table.Cell("Elsewhere", time.June)
	if acc == nil {
		t.Fatal("region outside the data lost its label")
	}
	for _, v := range acc.Stats1D().Q0.Elements {
		if v != 0 {
			t.Fatal("region outside the data accumulated points")
		}
	}
}

func TestAggregateWorkerCountInvariance(t *testing.T) {
	prof := newTestProfile(t, []int{2020, 2021}, 45) // spans June and July
	p := NewPipeline(DefaultConstants())
	f, err := p.Compute(prof)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig("both")
	cfg.Bins["bl"] = BinSpec{Min: -2., Max: 2., Width: 0.05}
	cfg.Bins["cape"] = BinSpec{Min: -100., Max: 100., Width: 2.}
	cfg.Bins["subsat"] = BinSpec{Min: -50., Max: 150., Width: 2.}
	cfg.Regions["North"] = grid.Box{LatMin: 10, LatMax: 20, LonMin: 60, LonMax: 90}

	serial, err := NewAggregator(cfg, DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	serial.Workers = 1
	parallel, err := NewAggregator(cfg, DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	parallel.Workers = 4

	ts, err := serial.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	tp, err := parallel.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	for ri := range ts.Regions {
		for mi := range ts.Months {
			a, b := ts.Cells[ri][mi].Stats1D(), tp.Cells[ri][mi].Stats1D()
			for i := range a.Q0.Elements {
				if a.Q0.Elements[i] != b.Q0.Elements[i] ||
					a.QE.Elements[i] != b.QE.Elements[i] ||
					a.Q1.Elements[i] != b.Q1.Elements[i] {
					t.Fatalf("region %s month %v bin %d differs between 1 and 4 workers",
						ts.Regions[ri], ts.Months[mi], i)
				}
			}
		}
	}
}

func TestRegionsFromShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.shp")
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatal(err)
	}
	w.SetFields([]shp.Field{shp.StringField("NAME", 25)})
	boxes := map[string][][]shp.Point{
		"Arabian Sea":   {{{X: 60, Y: 10}, {X: 70, Y: 10}, {X: 70, Y: 20}, {X: 60, Y: 20}, {X: 60, Y: 10}}},
		"Bay of Bengal": {{{X: 85, Y: 10}, {X: 95, Y: 10}, {X: 95, Y: 20}, {X: 85, Y: 20}, {X: 85, Y: 10}}},
	}
	row := 0
	for name, pts := range boxes {
		w.Write((*shp.Polygon)(shp.NewPolyLine(pts)))
		w.WriteAttribute(row, 0, name)
		row++
	}
	w.Close()
	// The go-shp writer names the attribute sidecar without a dot
	// ("regionsdbf"); give it the "regions.dbf" name the reader expects.
	base := strings.TrimSuffix(path, ".shp")
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		t.Fatal(err)
	}

	regions, err := RegionsFromShapefile(path, "name") // case-insensitive
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 {
		t.Fatalf("region count: have %d but want 2", len(regions))
	}
	want := grid.Box{LatMin: 10, LatMax: 20, LonMin: 60, LonMax: 70}
	if have := regions["Arabian Sea"]; have != want {
		t.Errorf("Arabian Sea box: have %+v but want %+v", have, want)
	}

	if _, err := RegionsFromShapefile(path, "MISSING"); err == nil {
		t.Error("lookup of a missing attribute succeeded")
	}
	if _, err := RegionsFromShapefile(filepath.Join(t.TempDir(), "no.shp"), "NAME"); err == nil {
		t.Error("opening a missing shapefile succeeded")
	}
}
