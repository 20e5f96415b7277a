package domain

import (
	"math"
	"sort"
	"time"
)

// loveGamma2 is the diminishing factor 1 + k2 - h2 applied to the
// equilibrium long-period tide.
const loveGamma2 = 0.693

// Partial is one wave's complex amplitude at a point: Z = A·e^(-iG) with
// A the amplitude and G the Greenwich phase lag.
type Partial struct {
	Wave *Constituent
	Z    complex128
}

// FromPolar builds a complex amplitude from an amplitude and a phase lag
// in degrees.
func FromPolar(amplitude, phaseDeg float64) complex128 {
	g := Deg2Rad(phaseDeg)
	return complex(amplitude*math.Cos(g), -amplitude*math.Sin(g))
}

// Contribution is f·Re(Z·e^(i(V+u))), which equals f·A·cos(V + u - G).
func Contribution(z complex128, arg Argument) float64 {
	theta := Deg2Rad(Normalize360(arg.V + arg.U))
	return arg.F * (real(z)*math.Cos(theta) - imag(z)*math.Sin(theta))
}

// Synthesize sums the partial tides into short-period and long-period
// heights, in the unit of the amplitudes.
func Synthesize(partials []Partial, a AstronomicAngle) (short, long float64) {
	for _, p := range partials {
		h := Contribution(p.Z, p.Wave.Argument(a))
		if p.Wave.Role() == LongPeriod {
			long += h
		} else {
			short += h
		}
	}
	return short, long
}

// LongPeriodEquilibrium returns the equilibrium long-period tide in metres
// at latitude lat, summed over the long-period waves for which skip
// returns false.
func LongPeriodEquilibrium(lat float64, a AstronomicAngle, skip func(name string) bool) float64 {
	sinLat := math.Sin(Deg2Rad(lat))
	c20 := math.Sqrt(5.0/(4.0*math.Pi)) * (1.5*sinLat*sinLat - 0.5)

	var sum float64
	for i := range catalog {
		w := &catalog[i]
		if w.Role() != LongPeriod || w.EquilibriumAmp == 0 || skip(w.Name) {
			continue
		}
		arg := w.Argument(a)
		sum += w.EquilibriumAmp * arg.F * math.Cos(Deg2Rad(Normalize360(arg.V+arg.U)))
	}
	return loveGamma2 * c20 * sum
}

// TideLevel represents a single tide height prediction at a specific time.
type TideLevel struct {
	Time   time.Time
	Height float64
}

// Extrema represents high and low tide events.
type Extrema struct {
	Highs []TideLevel
	Lows  []TideLevel
}

// HeightFunc evaluates the tide at one instant.
type HeightFunc func(t time.Time) (float64, error)

// GeneratePredictions creates a time series of tide predictions.
func GeneratePredictions(start, end time.Time, interval time.Duration, height HeightFunc) ([]TideLevel, error) {
	predictions := make([]TideLevel, 0)

	for t := start; !t.After(end); t = t.Add(interval) {
		h, err := height(t)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, TideLevel{
			Time:   t,
			Height: h,
		})
	}

	return predictions, nil
}

// FindExtrema identifies high and low tides from a time series.
// Uses first derivative sign change to detect peaks and troughs.
func FindExtrema(predictions []TideLevel) Extrema {
	if len(predictions) < 3 {
		return Extrema{
			Highs: []TideLevel{},
			Lows:  []TideLevel{},
		}
	}

	highs := make([]TideLevel, 0)
	lows := make([]TideLevel, 0)

	// Use first derivative (finite difference) to find sign changes.
	for i := 1; i < len(predictions)-1; i++ {
		prev := predictions[i-1].Height
		curr := predictions[i].Height
		next := predictions[i+1].Height

		// Check for local maximum (peak).
		if curr > prev && curr > next {
			highs = append(highs, predictions[i])
		}

		// Check for local minimum (trough).
		if curr < prev && curr < next {
			lows = append(lows, predictions[i])
		}

		// Handle plateau cases (curr == prev or curr == next).
		// For simplicity, we skip these in MVP.
	}

	return Extrema{
		Highs: highs,
		Lows:  lows,
	}
}

// RefineExtremum performs parabolic interpolation to get a more accurate extremum.
// Uses three points around the discrete extremum to fit a parabola.
// Returns the interpolated time and height.
func RefineExtremum(before, peak, after TideLevel) (time.Time, float64) {
	// Time spacing in hours.
	dt1 := peak.Time.Sub(before.Time).Hours()
	dt2 := after.Time.Sub(peak.Time).Hours()

	// For simplicity, assume uniform spacing.
	if math.Abs(dt1-dt2) > 1e-6 {
		// Non-uniform spacing - return discrete peak.
		return peak.Time, peak.Height
	}

	// Parabolic interpolation
	// y = a*x^2 + b*x + c
	// Vertex at x = -b/(2a).
	h0, h1, h2 := before.Height, peak.Height, after.Height

	// Using finite differences.
	a := (h2 - 2*h1 + h0) / (2 * dt1 * dt1)
	b := (h2 - h0) / (2 * dt1)

	if math.Abs(a) < 1e-10 {
		// Nearly linear - return discrete peak.
		return peak.Time, peak.Height
	}

	// Time offset from peak for the vertex.
	dtVertex := -b / (2 * a)

	// Clamp to reasonable range (within interval).
	if math.Abs(dtVertex) > dt1 {
		return peak.Time, peak.Height
	}

	refinedTime := peak.Time.Add(time.Duration(dtVertex * float64(time.Hour)))
	refinedHeight := h1 + b*dtVertex + a*dtVertex*dtVertex

	return refinedTime, refinedHeight
}

// RefineExtrema applies parabolic interpolation to all extrema.
func RefineExtrema(predictions []TideLevel, extrema Extrema) Extrema {
	if len(predictions) < 3 {
		return extrema
	}

	// Create a map for quick lookup.
	predMap := make(map[time.Time]int)
	for i, p := range predictions {
		predMap[p.Time] = i
	}

	refinedHighs := make([]TideLevel, 0, len(extrema.Highs))
	for _, high := range extrema.Highs {
		idx, ok := predMap[high.Time]
		if !ok || idx < 1 || idx >= len(predictions)-1 {
			refinedHighs = append(refinedHighs, high)
			continue
		}

		refinedTime, refinedHeight := RefineExtremum(
			predictions[idx-1],
			predictions[idx],
			predictions[idx+1],
		)

		refinedHighs = append(refinedHighs, TideLevel{
			Time:   refinedTime,
			Height: refinedHeight,
		})
	}

	refinedLows := make([]TideLevel, 0, len(extrema.Lows))
	for _, low := range extrema.Lows {
		idx, ok := predMap[low.Time]
		if !ok || idx < 1 || idx >= len(predictions)-1 {
			refinedLows = append(refinedLows, low)
			continue
		}

		refinedTime, refinedHeight := RefineExtremum(
			predictions[idx-1],
			predictions[idx],
			predictions[idx+1],
		)

		refinedLows = append(refinedLows, TideLevel{
			Time:   refinedTime,
			Height: refinedHeight,
		})
	}

	// Sort by time.
	sort.Slice(refinedHighs, func(i, j int) bool {
		return refinedHighs[i].Time.Before(refinedHighs[j].Time)
	})
	sort.Slice(refinedLows, func(i, j int) bool {
		return refinedLows[i].Time.Before(refinedLows[j].Time)
	})

	return Extrema{
		Highs: refinedHighs,
		Lows:  refinedLows,
	}
}
