package domain

import (
	"errors"
	"math"
	"testing"
)

func TestConstituentSpeeds(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
	}{
		{"M2", 28.9841042},
		{"S2", 30.0},
		{"N2", 28.4397295},
		{"K2", 30.0821373},
		{"K1", 15.0410686},
		{"O1", 13.9430356},
		{"P1", 14.9589314},
		{"Q1", 13.3986609},
		{"M4", 57.9682084},
		{"Mf", 1.0980331},
		{"Mm", 0.5443747},
		{"Sa", 0.0410686},
	}

	for _, tt := range tests {
		c, ok := Lookup(tt.name)
		if !ok {
			t.Errorf("%s: not in catalog", tt.name)
			continue
		}
		got := c.SpeedDegPerHr()
		if math.Abs(got-tt.speed) > 1e-6 {
			t.Errorf("%s: expected %.7f deg/h, got %.7f", tt.name, tt.speed, got)
		}
	}
}

func TestDoodsonNumber(t *testing.T) {
	tests := map[string]string{
		"M2":   "255.555",
		"S2":   "273.555",
		"N2":   "245.655",
		"K1":   "165.555",
		"O1":   "145.555",
		"Mm":   "065.455",
		"Mf":   "075.555",
		"Sa":   "056.555",
		"MSqm": "093.555",
		"Eps2": "227.655",
	}

	for name, want := range tests {
		c, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s: not in catalog", name)
		}
		if got := c.DoodsonNumber(); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"m2", "M2", " m2 ", "msqm", "SIGMA1", "2n2"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := Lookup("X9"); ok {
		t.Error("Lookup(X9) should fail")
	}
}

func TestAll_SortedCopy(t *testing.T) {
	all := All()
	if len(all) != len(catalog) {
		t.Fatalf("expected %d constituents, got %d", len(catalog), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].SpeedDegPerHr() < all[i-1].SpeedDegPerHr() {
			t.Errorf("not sorted at %d: %s before %s", i, all[i-1].Name, all[i].Name)
		}
	}

	all[0].Name = "changed"
	if c, _ := Lookup(catalog[0].Name); c.Name == "changed" {
		t.Error("All must not expose the catalog")
	}
}

func TestRoleAndSpecies(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		species int
	}{
		{"Sa", LongPeriod, 0},
		{"MSf", LongPeriod, 0},
		{"O1", ShortPeriod, 1},
		{"M2", ShortPeriod, 2},
		{"M3", ShortPeriod, 3},
		{"M8", ShortPeriod, 8},
	}
	for _, tt := range tests {
		c, _ := Lookup(tt.name)
		if c.Role() != tt.role || c.Species() != tt.species {
			t.Errorf("%s: expected %v/%d, got %v/%d", tt.name, tt.role, tt.species, c.Role(), c.Species())
		}
	}
}

func TestParseTideType(t *testing.T) {
	tests := []struct {
		in   string
		want TideType
	}{
		{"ocean", Ocean},
		{"TIDE", Ocean},
		{"radial", Radial},
		{"load", Radial},
	}
	for _, tt := range tests {
		got, err := ParseTideType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseTideType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseTideType("tsunami"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
