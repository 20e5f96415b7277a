// Package interp provides bilinear interpolation of complex tidal
// amplitudes over regular latitude/longitude grids with missing cells.
package interp

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned while building an axis.
var (
	ErrShortAxis     = errors.New("axis must have at least 2 points")
	ErrNotIncreasing = errors.New("axis must be strictly increasing")
	ErrIrregularAxis = errors.New("axis must be regularly spaced")
)

// axisTolerance is the allowed deviation from a regular spacing, as a
// fraction of the step.
const axisTolerance = 1e-3

// Axis is a regularly spaced coordinate axis.
type Axis struct {
	Start float64 // First coordinate, degrees.
	Step  float64 // Spacing, degrees (positive).
	Len   int     // Number of distinct nodes.

	// Wrap marks a longitude axis: queries are reduced modulo 360°.
	Wrap bool
	// Circular marks a longitude axis covering the whole circle, so the
	// last node is followed by the first.
	Circular bool
}

// NewLatAxis builds a latitude axis from sampled coordinates.
func NewLatAxis(points []float64) (Axis, error) {
	return newAxis(points, false)
}

// NewLonAxis builds a longitude axis from sampled coordinates. An axis
// spanning 360° is circular; a duplicated closing column is dropped.
func NewLonAxis(points []float64) (Axis, error) {
	return newAxis(points, true)
}

func newAxis(points []float64, lon bool) (Axis, error) {
	if len(points) < 2 {
		return Axis{}, ErrShortAxis
	}

	n := len(points)
	step := (points[n-1] - points[0]) / float64(n-1)
	if !(step > 0) {
		return Axis{}, ErrNotIncreasing
	}
	for i := 1; i < n; i++ {
		if !(points[i] > points[i-1]) {
			return Axis{}, fmt.Errorf("%w: index %d", ErrNotIncreasing, i)
		}
		want := points[0] + float64(i)*step
		if math.Abs(points[i]-want) > axisTolerance*step {
			return Axis{}, fmt.Errorf("%w: index %d is %.6f, expected %.6f", ErrIrregularAxis, i, points[i], want)
		}
	}

	a := Axis{Start: points[0], Step: step, Len: n, Wrap: lon}
	if !lon {
		return a, nil
	}

	switch {
	case math.Abs(float64(n)*step-360) <= axisTolerance*step:
		a.Circular = true
	case math.Abs(float64(n-1)*step-360) <= axisTolerance*step:
		// Closing column repeats the first one.
		a.Len = n - 1
		a.Circular = true
	case float64(n-1)*step > 360:
		return Axis{}, fmt.Errorf("%w: longitude span %.3f exceeds 360", ErrIrregularAxis, float64(n-1)*step)
	}
	return a, nil
}

// Coord returns the coordinate of node i.
func (a Axis) Coord(i int) float64 {
	return a.Start + float64(i)*a.Step
}

// Locate returns the node at or below x and the fractional distance
// towards the next node. ok is false when x falls outside the axis.
func (a Axis) Locate(x float64) (i int, frac float64, ok bool) {
	var pos float64
	if a.Wrap {
		// Reduce the query before offsetting so lon and lon+360 round alike.
		x = math.Mod(x, 360)
		if x < 0 {
			x += 360
		}
		if x >= 360 {
			x -= 360
		}
		d := math.Mod(x-a.Start, 360)
		if d < 0 {
			d += 360
		}
		pos = d / a.Step
	} else {
		pos = (x - a.Start) / a.Step
	}

	if a.Circular {
		i = int(math.Floor(pos))
		frac = pos - float64(i)
		if i >= a.Len {
			i -= a.Len
		}
		return i, frac, true
	}

	const eps = 1e-9
	last := float64(a.Len - 1)
	switch {
	case pos < -eps || pos > last+eps:
		return 0, 0, false
	case pos < 0:
		pos = 0
	case pos > last:
		pos = last
	}
	i = int(math.Floor(pos))
	return i, pos - float64(i), true
}

// next returns the index following i, wrapping on circular axes.
func (a Axis) next(i int) int {
	if a.Circular && i+1 >= a.Len {
		return 0
	}
	return i + 1
}

// Nodes gives access to grid values by index. Undefined nodes hold NaN.
type Nodes interface {
	Node(iLat, iLon int) (complex128, error)
}

// Dense is an in-memory grid stored row by row, latitude major.
type Dense struct {
	NLon   int
	Values []complex128
}

// Node implements Nodes.
func (d *Dense) Node(iLat, iLon int) (complex128, error) {
	return d.Values[iLat*d.NLon+iLon], nil
}

// Undefined is the value of a node without data.
//
//nolint:gochecknoglobals // Sentinel value.
var Undefined = complex(math.NaN(), math.NaN())

// IsUndefined reports whether z marks a node without data.
func IsUndefined(z complex128) bool {
	return math.IsNaN(real(z)) || math.IsNaN(imag(z))
}

// Grid is one wave's complex amplitude over a regular lat/lon grid.
type Grid struct {
	Lat   Axis
	Lon   Axis
	Nodes Nodes
}

// Interpolate returns the bilinear estimate at (lat, lon). Undefined
// neighbours are dropped and the remaining weights renormalised; ok is
// false when the point is outside the grid or no weighted neighbour is
// defined. A point on a node returns the node value unchanged. The error
// is non-nil only when reading a node fails.
func (g *Grid) Interpolate(lat, lon float64) (complex128, bool, error) {
	i, fy, ok := g.Lat.Locate(lat)
	if !ok {
		return 0, false, nil
	}
	j, fx, ok := g.Lon.Locate(lon)
	if !ok {
		return 0, false, nil
	}

	if fy == 0 && fx == 0 {
		z, err := g.Nodes.Node(i, j)
		if err != nil {
			return 0, false, err
		}
		if IsUndefined(z) {
			return 0, false, nil
		}
		return z, true, nil
	}

	corners := [4]struct {
		iLat, iLon int
		w          float64
	}{
		{i, j, (1 - fy) * (1 - fx)},
		{i, g.Lon.next(j), (1 - fy) * fx},
		{i + 1, j, fy * (1 - fx)},
		{i + 1, g.Lon.next(j), fy * fx},
	}

	var re, im, wsum float64
	for _, c := range corners {
		if c.w == 0 {
			continue
		}
		z, err := g.Nodes.Node(c.iLat, c.iLon)
		if err != nil {
			return 0, false, err
		}
		if IsUndefined(z) {
			continue
		}
		re += c.w * real(z)
		im += c.w * imag(z)
		wsum += c.w
	}

	if wsum == 0 {
		return 0, false, nil
	}
	return complex(re/wsum, im/wsum), true, nil
}
