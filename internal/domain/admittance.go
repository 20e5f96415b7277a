package domain

import "sort"

// Majors used as admittance anchors, per species.
//
//nolint:gochecknoglobals // Read-only.
var admittanceMajors = map[int][]string{
	1: {"Q1", "O1", "K1"},
	2: {"N2", "M2", "S2", "K2"},
}

// Admittance describes how one minor wave is rebuilt from the major waves
// bracketing it in frequency. The plan depends only on which waves are
// gridded, so it is computed once per session.
type Admittance struct {
	Minor *Constituent
	Lower *Constituent // Nearest gridded major below the minor's speed, or nil.
	Upper *Constituent // Nearest gridded major above the minor's speed, or nil.

	// Weight is the position of the minor between Lower (0) and Upper (1).
	Weight float64
}

// PlanAdmittance lists the inferable waves that are not gridded together
// with their bracketing majors. gridded reports whether a wave has a grid
// in the session; minors whose species has no gridded major are omitted.
func PlanAdmittance(gridded func(name string) bool) []Admittance {
	majors := make(map[int][]*Constituent, len(admittanceMajors))
	for species, names := range admittanceMajors {
		for _, name := range names {
			if !gridded(name) {
				continue
			}
			c, _ := Lookup(name)
			majors[species] = append(majors[species], c)
		}
		sort.Slice(majors[species], func(i, j int) bool {
			return majors[species][i].SpeedDegPerHr() < majors[species][j].SpeedDegPerHr()
		})
	}

	var plan []Admittance
	for i := range catalog {
		minor := &catalog[i]
		if !minor.Inferable || gridded(minor.Name) {
			continue
		}
		anchors := majors[minor.Species()]
		if len(anchors) == 0 {
			continue
		}
		plan = append(plan, bracket(minor, anchors))
	}
	return plan
}

func bracket(minor *Constituent, anchors []*Constituent) Admittance {
	speed := minor.SpeedDegPerHr()
	ad := Admittance{Minor: minor}
	for _, m := range anchors {
		if m.SpeedDegPerHr() <= speed {
			ad.Lower = m
		}
		if m.SpeedDegPerHr() > speed && ad.Upper == nil {
			ad.Upper = m
		}
	}
	if ad.Lower != nil && ad.Upper != nil {
		lo, hi := ad.Lower.SpeedDegPerHr(), ad.Upper.SpeedDegPerHr()
		ad.Weight = (speed - lo) / (hi - lo)
	}
	return ad
}

// Infer returns the minor's complex amplitude from the amplitudes of its
// bracketing majors. A missing or undefined bracket falls back to the
// other one; with neither defined the result is undefined.
func (ad Admittance) Infer(lower complex128, lowerOK bool, upper complex128, upperOK bool) (complex128, bool) {
	lowerOK = lowerOK && ad.Lower != nil
	upperOK = upperOK && ad.Upper != nil

	var y complex128
	switch {
	case lowerOK && upperOK:
		yl := lower / complex(ad.Lower.EquilibriumAmp, 0)
		yu := upper / complex(ad.Upper.EquilibriumAmp, 0)
		y = yl + (yu-yl)*complex(ad.Weight, 0)
	case lowerOK:
		y = lower / complex(ad.Lower.EquilibriumAmp, 0)
	case upperOK:
		y = upper / complex(ad.Upper.EquilibriumAmp, 0)
	default:
		return 0, false
	}
	return y * complex(ad.Minor.EquilibriumAmp, 0), true
}

// InferMinor rebuilds every inferable wave that is not gridded from the
// complex amplitudes of the majors defined at a point. Waves that cannot
// be inferred are left out and contribute nothing.
func InferMinor(majors map[string]complex128, gridded func(name string) bool) []Partial {
	plan := PlanAdmittance(gridded)
	out := make([]Partial, 0, len(plan))
	for _, ad := range plan {
		var lo, hi complex128
		var loOK, hiOK bool
		if ad.Lower != nil {
			lo, loOK = majors[ad.Lower.Name]
		}
		if ad.Upper != nil {
			hi, hiOK = majors[ad.Upper.Name]
		}
		if z, ok := ad.Infer(lo, loOK, hi, hiOK); ok {
			out = append(out, Partial{Wave: ad.Minor, Z: z})
		}
	}
	return out
}
