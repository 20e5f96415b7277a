package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Role tells which sum a constituent contributes to.
type Role int

const (
	// ShortPeriod covers diurnal, semi-diurnal and shallow-water waves.
	ShortPeriod Role = iota
	// LongPeriod covers waves with periods of days to a year.
	LongPeriod
)

func (r Role) String() string {
	if r == LongPeriod {
		return "long-period"
	}
	return "short-period"
}

// TideType selects which family of grids a session loads.
type TideType int

const (
	// Ocean is the pure ocean tide (as seen by a tide gauge).
	Ocean TideType = iota
	// Radial is the radial loading tide (elastic response of the solid Earth).
	Radial
)

func (t TideType) String() string {
	if t == Radial {
		return "radial"
	}
	return "ocean"
}

// ParseTideType accepts the names used in settings files and on the command line.
func ParseTideType(s string) (TideType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ocean", "tide", "short":
		return Ocean, nil
	case "radial", "load", "loading":
		return Radial, nil
	default:
		return Ocean, fmt.Errorf("%w: unknown tide type %q", ErrConfig, s)
	}
}

// ArgumentCoefficients are the multipliers of the astronomical angles
// (T, s, h, p, N, p1) in a constituent's equilibrium argument, plus a
// constant phase in degrees.
type ArgumentCoefficients struct {
	T, S, H, P, N, P1 int
	Phase             float64
}

// Mean rates of the astronomical angles in degrees per mean solar hour.
const (
	rateT  = 15.0
	rateS  = 0.54901652
	rateH  = 0.04106864
	rateP  = 0.00464181
	rateN  = -0.00220641
	rateP1 = 0.00000196
)

// Constituent is one tidal wave of the catalog.
type Constituent struct {
	Name string
	Args ArgumentCoefficients

	// EquilibriumAmp is the Cartwright–Tayler equilibrium amplitude in
	// metres; zero when the wave has no entry in the tables.
	EquilibriumAmp float64

	// Inferable marks minor waves that admittance may reconstruct from
	// the majors of the same species.
	Inferable bool

	nodal nodalFunc
}

// Species is the number of cycles per lunar day (0 for long-period waves).
func (c *Constituent) Species() int {
	return c.Args.T
}

// Role reports which sum the constituent contributes to.
func (c *Constituent) Role() Role {
	if c.Args.T == 0 {
		return LongPeriod
	}
	return ShortPeriod
}

// SpeedDegPerHr returns the angular speed in degrees per hour.
func (c *Constituent) SpeedDegPerHr() float64 {
	a := c.Args
	return float64(a.T)*rateT + float64(a.S)*rateS + float64(a.H)*rateH +
		float64(a.P)*rateP + float64(a.N)*rateN + float64(a.P1)*rateP1
}

// DoodsonNumber renders the argument in Doodson's notation (e.g. "255.555"
// for M2). Digits above nine are written X (10) and E (11).
func (c *Constituent) DoodsonNumber() string {
	a := c.Args
	// T = tau + s - h, so re-express the argument in lunar time.
	digits := []int{a.T, a.T + a.S + 5, a.H - a.T + 5, a.P + 5, -a.N + 5, a.P1 + 5}
	var b strings.Builder
	for i, d := range digits {
		if i == 3 {
			b.WriteByte('.')
		}
		switch {
		case d == 10:
			b.WriteByte('X')
		case d == 11:
			b.WriteByte('E')
		case d < 0 || d > 11:
			b.WriteByte('?')
		default:
			b.WriteByte(byte('0' + d))
		}
	}
	return b.String()
}

// catalog lists every wave the engine knows about. Arguments follow
// Schureman (1958) with T the hour angle of the mean sun.
//
//nolint:gochecknoglobals // Read-only wave table shared by all sessions.
var catalog = []Constituent{
	// Long period.
	{Name: "Sa", Args: ArgumentCoefficients{H: 1}, EquilibriumAmp: 0.003104},
	{Name: "Ssa", Args: ArgumentCoefficients{H: 2}, EquilibriumAmp: 0.019446},
	{Name: "Mm", Args: ArgumentCoefficients{S: 1, P: -1}, EquilibriumAmp: 0.022024, nodal: fuMm},
	{Name: "MSf", Args: ArgumentCoefficients{S: 2, H: -2}, EquilibriumAmp: 0.003648, nodal: fuMSf},
	{Name: "Mf", Args: ArgumentCoefficients{S: 2}, EquilibriumAmp: 0.041742, nodal: fuMf},
	{Name: "Mtm", Args: ArgumentCoefficients{S: 3, P: -1}, EquilibriumAmp: 0.007988, nodal: fuMf},
	{Name: "MSqm", Args: ArgumentCoefficients{S: 4, H: -2}, EquilibriumAmp: 0.001281, nodal: fuMf},

	// Diurnal.
	{Name: "2Q1", Args: ArgumentCoefficients{T: 1, S: -4, H: 1, P: 2, Phase: 90}, EquilibriumAmp: 0.006638, Inferable: true, nodal: fuO1},
	{Name: "Sigma1", Args: ArgumentCoefficients{T: 1, S: -4, H: 3, Phase: 90}, EquilibriumAmp: 0.008023, Inferable: true, nodal: fuO1},
	{Name: "Q1", Args: ArgumentCoefficients{T: 1, S: -3, H: 1, P: 1, Phase: 90}, EquilibriumAmp: 0.019256, nodal: fuO1},
	{Name: "Rho1", Args: ArgumentCoefficients{T: 1, S: -3, H: 3, P: -1, Phase: 90}, EquilibriumAmp: 0.003653, Inferable: true, nodal: fuO1},
	{Name: "O1", Args: ArgumentCoefficients{T: 1, S: -2, H: 1, Phase: 90}, EquilibriumAmp: 0.100514, nodal: fuO1},
	{Name: "M1", Args: ArgumentCoefficients{T: 1, S: -1, H: 1, P: 1, Phase: -90}, EquilibriumAmp: 0.007964, Inferable: true, nodal: fuM1},
	{Name: "Chi1", Args: ArgumentCoefficients{T: 1, S: -1, H: 3, P: -1, Phase: -90}, EquilibriumAmp: 0.001510, Inferable: true, nodal: fuJ1},
	{Name: "Pi1", Args: ArgumentCoefficients{T: 1, H: -2, P1: 1, Phase: 90}, EquilibriumAmp: 0.002729, Inferable: true},
	{Name: "P1", Args: ArgumentCoefficients{T: 1, H: -1, Phase: 90}, EquilibriumAmp: 0.046843},
	{Name: "S1", Args: ArgumentCoefficients{T: 1}},
	{Name: "K1", Args: ArgumentCoefficients{T: 1, H: 1, Phase: -90}, EquilibriumAmp: 0.141565, nodal: fuK1},
	{Name: "Phi1", Args: ArgumentCoefficients{T: 1, H: 3, Phase: -90}, EquilibriumAmp: 0.002016, Inferable: true},
	{Name: "Theta1", Args: ArgumentCoefficients{T: 1, S: 1, H: -1, P: 1, Phase: -90}, EquilibriumAmp: 0.001514, Inferable: true, nodal: fuJ1},
	{Name: "J1", Args: ArgumentCoefficients{T: 1, S: 1, H: 1, P: -1, Phase: -90}, EquilibriumAmp: 0.007904, Inferable: true, nodal: fuJ1},
	{Name: "OO1", Args: ArgumentCoefficients{T: 1, S: 2, H: 1, Phase: -90}, EquilibriumAmp: 0.004339, Inferable: true, nodal: fuOO1},

	// Semi-diurnal.
	{Name: "Eps2", Args: ArgumentCoefficients{T: 2, S: -5, H: 4, P: 1}, EquilibriumAmp: 0.001796, Inferable: true, nodal: fuM2},
	{Name: "2N2", Args: ArgumentCoefficients{T: 2, S: -4, H: 2, P: 2}, EquilibriumAmp: 0.006141, Inferable: true, nodal: fuM2},
	{Name: "Mu2", Args: ArgumentCoefficients{T: 2, S: -4, H: 4}, EquilibriumAmp: 0.007408, Inferable: true, nodal: fuM2},
	{Name: "N2", Args: ArgumentCoefficients{T: 2, S: -3, H: 2, P: 1}, EquilibriumAmp: 0.046397, nodal: fuM2},
	{Name: "Nu2", Args: ArgumentCoefficients{T: 2, S: -3, H: 4, P: -1}, EquilibriumAmp: 0.008811, Inferable: true, nodal: fuM2},
	{Name: "M2", Args: ArgumentCoefficients{T: 2, S: -2, H: 2}, EquilibriumAmp: 0.242334, nodal: fuM2},
	{Name: "MKS2", Args: ArgumentCoefficients{T: 2, S: -2, H: 4}, nodal: product(fuM2, fuK2)},
	{Name: "Lambda2", Args: ArgumentCoefficients{T: 2, S: -1, P: 1, Phase: 180}, EquilibriumAmp: 0.001787, Inferable: true, nodal: fuM2},
	{Name: "L2", Args: ArgumentCoefficients{T: 2, S: -1, H: 2, P: -1, Phase: 180}, EquilibriumAmp: 0.006850, Inferable: true, nodal: fuL2},
	{Name: "T2", Args: ArgumentCoefficients{T: 2, H: -1, P1: 1}, EquilibriumAmp: 0.006586, Inferable: true},
	{Name: "S2", Args: ArgumentCoefficients{T: 2}, EquilibriumAmp: 0.112841},
	{Name: "R2", Args: ArgumentCoefficients{T: 2, H: 1, P1: -1, Phase: 180}, EquilibriumAmp: 0.000946, Inferable: true},
	{Name: "K2", Args: ArgumentCoefficients{T: 2, H: 2}, EquilibriumAmp: 0.030704, nodal: fuK2},
	{Name: "Eta2", Args: ArgumentCoefficients{T: 2, S: 1, H: 2, P: -1}, EquilibriumAmp: 0.001724, Inferable: true, nodal: fuEta2},

	// Shallow water.
	{Name: "M3", Args: ArgumentCoefficients{T: 3, S: -3, H: 3}, nodal: fuM3},
	{Name: "MK3", Args: ArgumentCoefficients{T: 3, S: -2, H: 3, Phase: -90}, nodal: product(fuM2, fuK1)},
	{Name: "N4", Args: ArgumentCoefficients{T: 4, S: -6, H: 4, P: 2}, nodal: power(fuM2, 2)},
	{Name: "MN4", Args: ArgumentCoefficients{T: 4, S: -5, H: 4, P: 1}, nodal: power(fuM2, 2)},
	{Name: "M4", Args: ArgumentCoefficients{T: 4, S: -4, H: 4}, nodal: power(fuM2, 2)},
	{Name: "MS4", Args: ArgumentCoefficients{T: 4, S: -2, H: 2}, nodal: fuM2},
	{Name: "S4", Args: ArgumentCoefficients{T: 4}},
	{Name: "M6", Args: ArgumentCoefficients{T: 6, S: -6, H: 6}, nodal: power(fuM2, 3)},
	{Name: "M8", Args: ArgumentCoefficients{T: 8, S: -8, H: 8}, nodal: power(fuM2, 4)},
}

//nolint:gochecknoglobals // Built once from catalog.
var catalogIndex = func() map[string]*Constituent {
	idx := make(map[string]*Constituent, len(catalog))
	for i := range catalog {
		idx[strings.ToLower(catalog[i].Name)] = &catalog[i]
	}
	return idx
}()

// Lookup finds a constituent by name, ignoring case.
func Lookup(name string) (*Constituent, bool) {
	c, ok := catalogIndex[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// All returns a copy of the catalog sorted by angular speed.
func All() []Constituent {
	out := make([]Constituent, len(catalog))
	copy(out, catalog)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SpeedDegPerHr() < out[j].SpeedDegPerHr()
	})
	return out
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Normalize360 reduces an angle in degrees to [0, 360).
func Normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	if deg == 360.0 {
		return 0
	}
	return deg
}
