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
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSummaryTable(t *testing.T) {
	f := singlePointFields(t, 0.04, 2.3, 5.2, 3.)
	agg, err := NewAggregator(testConfig("both"), DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	table, err := agg.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	summary, err := table.SummaryTable()
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 {
		t.Fatalf("summary rows: have %d but want 2 (header + one cell)", len(summary))
	}
	row := summary[1]
	if row[0] != "Test" || row[1] != time.June.String() {
		t.Errorf("summary labels: have %v", row[:2])
	}
	if row[2] != "1" || row[3] != "1.000" || row[4] != "3" {
		t.Errorf("summary statistics: have %v", row[2:5])
	}

	var buf bytes.Buffer
	if _, err := summary.Tabbed(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Region") || !strings.Contains(out, "Test") {
		t.Errorf("tabbed output incomplete:\n%s", out)
	}
}

func TestSummaryTableRequiresBLStats(t *testing.T) {
	f := singlePointFields(t, 0.04, 2.3, 5.2, 3.)
	agg, err := NewAggregator(testConfig("joint"), DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	table, err := agg.Aggregate(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.SummaryTable(); err == nil {
		t.Error("summary produced without BL-binned statistics")
	}
}
