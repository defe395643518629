// Package grid holds labeled gridded fields on named, sorted coordinate
// axes. Array storage is provided by github.com/ctessum/sparse.
package grid

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
)

// Box is a rectangular latitude/longitude region with inclusive bounds.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Check returns an error if the box bounds are inverted.
func (b Box) Check() error {
	if b.LatMax < b.LatMin {
		return fmt.Errorf("grid: box latitude bounds are inverted: [%g, %g]", b.LatMin, b.LatMax)
	}
	if b.LonMax < b.LonMin {
		return fmt.Errorf("grid: box longitude bounds are inverted: [%g, %g]", b.LonMin, b.LonMax)
	}
	return nil
}

// Var4 is a variable on (lev, time, lat, lon) axes. Lev is in hPa and
// sorted ascending, so index 0 is the top of the atmosphere.
type Var4 struct {
	Lev  []float64
	Time []time.Time
	Lat  []float64
	Lon  []float64
	Data *sparse.DenseArray
}

// Var3 is a variable on (time, lat, lon) axes.
type Var3 struct {
	Time []time.Time
	Lat  []float64
	Lon  []float64
	Data *sparse.DenseArray
}

// NewVar4 allocates a zero-filled variable on the given axes. The
// numeric axes must be sorted ascending with no duplicate values.
func NewVar4(lev []float64, t []time.Time, lat, lon []float64) (*Var4, error) {
	if err := checkAxis("lev", lev); err != nil {
		return nil, err
	}
	if err := checkTimeAxis(t); err != nil {
		return nil, err
	}
	if err := checkAxis("lat", lat); err != nil {
		return nil, err
	}
	if err := checkAxis("lon", lon); err != nil {
		return nil, err
	}
	return &Var4{
		Lev:  lev,
		Time: t,
		Lat:  lat,
		Lon:  lon,
		Data: sparse.ZerosDense(len(lev), len(t), len(lat), len(lon)),
	}, nil
}

// NewVar3 allocates a zero-filled variable on the given axes.
func NewVar3(t []time.Time, lat, lon []float64) (*Var3, error) {
	if err := checkTimeAxis(t); err != nil {
		return nil, err
	}
	if err := checkAxis("lat", lat); err != nil {
		return nil, err
	}
	if err := checkAxis("lon", lon); err != nil {
		return nil, err
	}
	return &Var3{
		Time: t,
		Lat:  lat,
		Lon:  lon,
		Data: sparse.ZerosDense(len(t), len(lat), len(lon)),
	}, nil
}

func checkAxis(name string, vals []float64) error {
	if len(vals) == 0 {
		return fmt.Errorf("grid: axis %s is empty", name)
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return fmt.Errorf("grid: axis %s is not sorted ascending without "+
				"duplicates at index %d: %g followed by %g", name, i, vals[i-1], vals[i])
		}
	}
	return nil
}

func checkTimeAxis(t []time.Time) error {
	if len(t) == 0 {
		return fmt.Errorf("grid: axis time is empty")
	}
	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return fmt.Errorf("grid: axis time is not sorted ascending without "+
				"duplicates at index %d: %v followed by %v", i, t[i-1], t[i])
		}
	}
	return nil
}

// SameShape returns an error unless v and o share axis lengths.
func (v *Var3) SameShape(o *Var3) error {
	if len(v.Time) != len(o.Time) || len(v.Lat) != len(o.Lat) ||
		len(v.Lon) != len(o.Lon) {
		return fmt.Errorf("grid: shape mismatch: (%d,%d,%d) != (%d,%d,%d)",
			len(v.Time), len(v.Lat), len(v.Lon),
			len(o.Time), len(o.Lat), len(o.Lon))
	}
	return nil
}

// Get returns the value at the given axis indices.
func (v *Var4) Get(ilev, it, ilat, ilon int) float64 {
	return v.Data.Get(ilev, it, ilat, ilon)
}

// Set sets the value at the given axis indices.
func (v *Var4) Set(val float64, ilev, it, ilat, ilon int) {
	v.Data.Elements[v.Data.Index1d(ilev, it, ilat, ilon)] = val
}

// Get returns the value at the given axis indices.
func (v *Var3) Get(it, ilat, ilon int) float64 {
	return v.Data.Get(it, ilat, ilon)
}

// Set sets the value at the given axis indices.
func (v *Var3) Set(val float64, it, ilat, ilon int) {
	v.Data.Elements[v.Data.Index1d(it, ilat, ilon)] = val
}

// Index1d returns the flat index of the given axis indices.
func (v *Var3) Index1d(it, ilat, ilon int) int {
	return (it*len(v.Lat)+ilat)*len(v.Lon) + ilon
}

// Column copies the level profile at a single (time, lat, lon) point into
// buf, which is allocated if too small, and returns it.
func (v *Var4) Column(buf []float64, it, ilat, ilon int) []float64 {
	nlev := len(v.Lev)
	if cap(buf) < nlev {
		buf = make([]float64, nlev)
	}
	buf = buf[:nlev]
	stride := len(v.Time) * len(v.Lat) * len(v.Lon)
	base := (it*len(v.Lat)+ilat)*len(v.Lon) + ilon
	for k := 0; k < nlev; k++ {
		buf[k] = v.Data.Elements[base+k*stride]
	}
	return buf
}

// SearchRight returns the greatest index i with x[i] <= v, or -1 when v
// is below the whole axis. x must be sorted ascending.
func SearchRight(x []float64, v float64) int {
	lo, hi := 0, len(x)
	for lo < hi {
		mid := (lo + hi) / 2
		if x[mid] <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// SearchLeft returns the smallest index i with x[i] >= v, or len(x) when
// v is above the whole axis. x must be sorted ascending.
func SearchLeft(x []float64, v float64) int {
	lo, hi := 0, len(x)
	for lo < hi {
		mid := (lo + hi) / 2
		if x[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// IndexRange returns the first and last axis indices falling within
// [lo, hi] inclusive, and ok=false when the interval contains no points.
func IndexRange(axis []float64, lo, hi float64) (i0, i1 int, ok bool) {
	i0 = SearchLeft(axis, lo)
	i1 = SearchRight(axis, hi)
	return i0, i1, i0 <= i1 && i0 < len(axis)
}

// MonthGroups maps each calendar month present on the time axis to the
// time indices belonging to it, preserving time order.
func MonthGroups(t []time.Time) map[time.Month][]int {
	groups := make(map[time.Month][]int)
	for i, v := range t {
		m := v.Month()
		groups[m] = append(groups[m], i)
	}
	return groups
}

// YearRange is a half-open range [Start, End) of time-axis indices
// belonging to one calendar year.
type YearRange struct {
	Year       int
	Start, End int
}

// YearPartition splits a sorted time axis into contiguous per-year index
// ranges.
func YearPartition(t []time.Time) []YearRange {
	var out []YearRange
	for i := 0; i < len(t); {
		y := t[i].Year()
		j := i
		for j < len(t) && t[j].Year() == y {
			j++
		}
		out = append(out, YearRange{Year: y, Start: i, End: j})
		i = j
	}
	return out
}
