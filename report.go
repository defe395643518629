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
	"text/tabwriter"
)

// A Table holds a text representation of report data.
type Table [][]string

// Tabbed writes t as a tab-separated table.
func (t Table) Tabbed(w io.Writer) (n int, err error) {
	ww := new(tabwriter.Writer)
	ww.Init(w, 0, 2, 1, '\t', 0)
	for _, l := range t {
		for _, r := range l {
			nn, err := fmt.Fprint(ww, r+"\t")
			if err != nil {
				return n, err
			}
			n += nn
		}
		nn, err := fmt.Fprint(ww, "\n")
		if err != nil {
			return n, err
		}
		n += nn
	}
	return n, ww.Flush()
}

// SummaryTable returns a per-(region, month) overview of the statistics
// in tbl: the number of binned points, the fraction whose precipitation
// exceeded the threshold, the mean precipitation, and the BL bin edge at
// which the exceedance probability peaks. Requires BL-binned statistics
// (mode "bl" or "both").
func (tbl *RegionMonthTable) SummaryTable() (Table, error) {
	t := Table{{"Region", "Month", "Points", "ExceedFrac", "MeanPrecip", "PeakProbBL"}}
	for ri, region := range tbl.Regions {
		for mi, m := range tbl.Months {
			acc := tbl.Cells[ri][mi]
			s := acc.Stats1D()
			if s == nil {
				return nil, fmt.Errorf("monsoonpod: summary requires BL-binned "+
					"statistics, but the accumulation mode is %q", acc.Mode())
			}
			var q0, qe, q1 float64
			peak, peakBin := 0., -1
			for i := range s.Edges {
				q0 += s.Q0.Elements[i]
				qe += s.QE.Elements[i]
				q1 += s.Q1.Elements[i]
				if s.Q0.Elements[i] > 0 {
					if p := s.QE.Elements[i] / s.Q0.Elements[i]; p > peak {
						peak, peakBin = p, i
					}
				}
			}
			row := []string{region, m.String()}
			if q0 == 0 || peakBin < 0 {
				row = append(row, fmt.Sprintf("%.0f", q0), "-", "-", "-")
			} else {
				row = append(row,
					fmt.Sprintf("%.0f", q0),
					fmt.Sprintf("%.3f", qe/q0),
					fmt.Sprintf("%.3g", q1/q0),
					fmt.Sprintf("%.4g", s.Edges[peakBin]))
			}
			t = append(t, row)
		}
	}
	return t, nil
}
