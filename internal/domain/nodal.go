package domain

import "math"

// Argument is the time-dependent part of one constituent's contribution.
type Argument struct {
	V float64 // Equilibrium argument (degrees, [0, 360)).
	F float64 // Nodal amplitude factor.
	U float64 // Nodal phase correction (degrees, [0, 360)).
}

// Argument evaluates V, f and u for the constituent at the given angles.
func (c *Constituent) Argument(a AstronomicAngle) Argument {
	k := c.Args
	v := float64(k.T)*a.T + float64(k.S)*a.S + float64(k.H)*a.H +
		float64(k.P)*a.P + float64(k.N)*a.N + float64(k.P1)*a.P1 + k.Phase

	f, u := 1.0, 0.0
	if c.nodal != nil {
		f, u = c.nodal(a)
	}
	return Argument{V: Normalize360(v), F: f, U: Normalize360(u)}
}

// ArgumentsAt returns the argument of every catalog wave at t (days since
// 1950-01-01 00:00 UTC), keyed by constituent name.
func ArgumentsAt(t float64) map[string]Argument {
	a := NewAstronomicAngle(t)
	out := make(map[string]Argument, len(catalog))
	for i := range catalog {
		out[catalog[i].Name] = catalog[i].Argument(a)
	}
	return out
}

// nodalFunc returns the nodal factor f and the nodal phase u in degrees.
type nodalFunc func(a AstronomicAngle) (f, u float64)

// Node factors below follow Schureman (1958), Table 2, formulas 73 to 79,
// 141, 149, 197, 207, 215 and 227.

func fuM2(a AstronomicAngle) (f, u float64) {
	cosHalfI := math.Cos(Deg2Rad(a.I) / 2)
	f = math.Pow(cosHalfI, 4) / 0.9154
	return f, 2*a.Xi - 2*a.Nu
}

func fuO1(a AstronomicAngle) (f, u float64) {
	i := Deg2Rad(a.I)
	cosHalfI := math.Cos(i / 2)
	f = math.Sin(i) * cosHalfI * cosHalfI / 0.3800
	return f, 2*a.Xi - a.Nu
}

func fuJ1(a AstronomicAngle) (f, u float64) {
	return math.Sin(2*Deg2Rad(a.I)) / 0.7214, -a.Nu
}

func fuOO1(a AstronomicAngle) (f, u float64) {
	i := Deg2Rad(a.I)
	sinHalfI := math.Sin(i / 2)
	f = math.Sin(i) * sinHalfI * sinHalfI / 0.0164
	return f, -2*a.Xi - a.Nu
}

func fuK1(a AstronomicAngle) (f, u float64) {
	i := Deg2Rad(a.I)
	sin2I := math.Sin(2 * i)
	f = math.Sqrt(0.8965*sin2I*sin2I + 0.6001*sin2I*math.Cos(Deg2Rad(a.Nu)) + 0.1006)
	return f, -a.NuPrime
}

func fuK2(a AstronomicAngle) (f, u float64) {
	sinI := math.Sin(Deg2Rad(a.I))
	sinI2 := sinI * sinI
	f = math.Sqrt(19.0444*sinI2*sinI2 + 2.7702*sinI2*math.Cos(2*Deg2Rad(a.Nu)) + 0.0981)
	return f, -a.Nu2Sec
}

func fuM1(a AstronomicAngle) (f, u float64) {
	fo, _ := fuO1(a)
	return fo * a.QaInv, a.Xi - a.Nu + a.Q
}

func fuL2(a AstronomicAngle) (f, u float64) {
	fm, um := fuM2(a)
	return fm * a.RaInv, um - a.R
}

func fuM3(a AstronomicAngle) (f, u float64) {
	cosHalfI := math.Cos(Deg2Rad(a.I) / 2)
	f = math.Pow(cosHalfI, 6) / 0.8758
	return f, 3*a.Xi - 3*a.Nu
}

func fuEta2(a AstronomicAngle) (f, u float64) {
	sinI := math.Sin(Deg2Rad(a.I))
	return sinI * sinI / 0.1565, -2 * a.Nu
}

func fuMm(a AstronomicAngle) (f, u float64) {
	sinI := math.Sin(Deg2Rad(a.I))
	return (2.0/3.0 - sinI*sinI) / 0.5021, 0
}

func fuMf(a AstronomicAngle) (f, u float64) {
	sinI := math.Sin(Deg2Rad(a.I))
	return sinI * sinI / 0.1578, -2 * a.Xi
}

// MSf is S2 - M2: the M2 node factor with the opposite phase.
func fuMSf(a AstronomicAngle) (f, u float64) {
	f, u = fuM2(a)
	return f, -u
}

// power builds the correction of a compound wave made of n copies of one parent.
func power(fn nodalFunc, n int) nodalFunc {
	return func(a AstronomicAngle) (float64, float64) {
		f, u := fn(a)
		return math.Pow(f, float64(n)), float64(n) * u
	}
}

// product builds the correction of a compound wave made of two parents.
func product(x, y nodalFunc) nodalFunc {
	return func(a AstronomicAngle) (float64, float64) {
		f1, u1 := x(a)
		f2, u2 := y(a)
		return f1 * f2, u1 + u2
	}
}
