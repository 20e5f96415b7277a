package domain

import "math"

const (
	// cnesToJ1900 is the number of days from J1900.0 to 1950-01-01 00:00.
	cnesToJ1900    = 18262.5
	daysPerCentury = 36525.0

	obliquity        = 23.452 // ω, degrees.
	lunarInclination = 5.145  // i, degrees.
)

// AstronomicAngle holds the astronomical quantities that drive every
// tidal argument at one instant. All angles are in degrees in [0, 360)
// except the dimensionless amplitude terms.
type AstronomicAngle struct {
	T  float64 // Hour angle of the mean sun.
	S  float64 // Mean longitude of the moon.
	H  float64 // Mean longitude of the sun.
	P  float64 // Longitude of the lunar perigee.
	N  float64 // Longitude of the moon's ascending node.
	P1 float64 // Longitude of the solar perigee.

	I       float64 // Obliquity of the lunar orbit to the equator.
	Xi      float64 // ξ.
	Nu      float64 // ν.
	NuPrime float64 // ν′, used by K1.
	Nu2Sec  float64 // 2ν″, used by K2.

	R     float64 // L2 phase term.
	RaInv float64 // 1/Ra, L2 amplitude term.
	Q     float64 // M1 phase term.
	QaInv float64 // 1/Qa, M1 amplitude term.
}

// NewAstronomicAngle computes the astronomical angles for t, expressed in
// days since 1950-01-01 00:00 UTC. The result depends on t only.
func NewAstronomicAngle(t float64) AstronomicAngle {
	tt := (t + cnesToJ1900) / daysPerCentury
	tt2 := tt * tt
	tt3 := tt2 * tt

	a := AstronomicAngle{
		T:  Normalize360(180.0 + 360.0*(t-math.Floor(t))),
		S:  Normalize360(270.434164 + 481267.8831*tt - 0.001133*tt2 + 0.0000019*tt3),
		H:  Normalize360(279.696678 + 36000.768925*tt + 0.0003025*tt2),
		P:  Normalize360(334.329556 + 4069.0340329*tt - 0.010325*tt2 - 0.000012*tt3),
		N:  Normalize360(259.183275 - 1934.142008*tt + 0.002078*tt2 + 0.0000022*tt3),
		P1: Normalize360(281.220844 + 1.719175*tt + 0.000453*tt2 + 0.000003*tt3),
	}
	a.derive()
	return a
}

// derive fills the quantities that depend on the node and perigee.
func (a *AstronomicAngle) derive() {
	n := a.N
	if n > 180 {
		n -= 360
	}
	nRad := Deg2Rad(n)

	cosI := 0.91370 - 0.03569*math.Cos(nRad)
	iRad := math.Acos(cosI)

	// Napier's analogies on the spherical triangle formed by the
	// equator, the ecliptic and the lunar orbit.
	w := Deg2Rad(obliquity)
	i := Deg2Rad(lunarInclination)
	tanHalfN := math.Tan(nRad / 2)
	plus := 2 * math.Atan(math.Cos((w-i)/2)/math.Cos((w+i)/2)*tanHalfN)
	minus := 2 * math.Atan(math.Sin((w-i)/2)/math.Sin((w+i)/2)*tanHalfN)
	nu := (plus - minus) / 2
	xi := nRad - (plus+minus)/2

	sin2I := math.Sin(2 * iRad)
	sinI := math.Sin(iRad)
	sin2ISq := sinI * sinI
	nuPrime := math.Atan2(sin2I*math.Sin(nu), sin2I*math.Cos(nu)+0.3347)
	nu2Sec := math.Atan2(sin2ISq*math.Sin(2*nu), sin2ISq*math.Cos(2*nu)+0.0727)

	pRad := Deg2Rad(a.P) - xi
	tanHalfI := math.Tan(iRad / 2)
	tanHalfI2 := tanHalfI * tanHalfI
	cos2P := math.Cos(2 * pRad)
	r := math.Atan2(math.Sin(2*pRad), 1/(6*tanHalfI2)-cos2P)
	raInv := math.Sqrt(1 - 12*tanHalfI2*cos2P + 36*tanHalfI2*tanHalfI2)

	cosHalfI2 := math.Cos(iRad/2) * math.Cos(iRad/2)
	q := math.Atan2((5*cosI-1)*math.Sin(pRad), (7*cosI+1)*math.Cos(pRad))
	qaInv := math.Sqrt(0.25 + 1.5*cosI*cos2P/cosHalfI2 + 2.25*cosI*cosI/(cosHalfI2*cosHalfI2))

	a.I = Rad2Deg(iRad)
	a.Xi = Normalize360(Rad2Deg(xi))
	a.Nu = Normalize360(Rad2Deg(nu))
	a.NuPrime = Normalize360(Rad2Deg(nuPrime))
	a.Nu2Sec = Normalize360(Rad2Deg(nu2Sec))
	a.R = Normalize360(Rad2Deg(r))
	a.RaInv = raInv
	a.Q = Normalize360(Rad2Deg(q))
	a.QaInv = qaInv
}
