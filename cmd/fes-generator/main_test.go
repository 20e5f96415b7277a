package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/engine"
)

const table = `constituent,amplitude_cm,phase_deg
M2,120.0,95.0
S2,40.0,130.0
K1,7.0,70.0
O1,6.0,320.0
`

func testOptions(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "table.csv")
	if err := os.WriteFile(csvPath, []byte(table), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return options{
		csvPath: csvPath,
		outDir:  filepath.Join(dir, "fes"),
		region:  "custom",
		custom: RegionalGrid{
			LatMin: 44, LatMax: 46, LonMin: -3, LonMax: 0, Resolution: 0.5,
		},
		refLat:    45,
		refLon:    -1.5,
		loadRatio: 0.05,
	}
}

func evaluate(t *testing.T, settings string, tideType domain.TideType, when time.Time) engine.Result {
	t.Helper()
	h, err := engine.OpenFile(tideType, settings)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer func() { _ = h.Close() }()
	r, err := h.Evaluate(45.25, -1.2, when)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r.Missing != 0 {
		t.Errorf("expected every wave defined, got %d missing", r.Missing)
	}
	return r
}

// TestRun_RoundTrip generates a small region and predicts from it.
func TestRun_RoundTrip(t *testing.T) {
	when := time.Date(2024, time.March, 15, 6, 30, 0, 0, time.UTC)

	var reference float64
	for _, variant := range []struct {
		name       string
		complexOut bool
		lonMajor   bool
	}{
		{"amplitude phase", false, false},
		{"complex", true, false},
		{"lon major", false, true},
	} {
		t.Run(variant.name, func(t *testing.T) {
			opts := testOptions(t)
			opts.complexOut, opts.lonMajor = variant.complexOut, variant.lonMajor
			if err := run(opts, zap.NewNop()); err != nil {
				t.Fatalf("run: %v", err)
			}
			settings := filepath.Join(opts.outDir, "fes.yaml")
			for _, f := range []string{"ocean/m2.nc", "ocean/o1.nc", "load/k1.nc"} {
				if _, err := os.Stat(filepath.Join(opts.outDir, f)); err != nil {
					t.Errorf("expected %s: %v", f, err)
				}
			}

			ocean := evaluate(t, settings, domain.Ocean, when)
			load := evaluate(t, settings, domain.Radial, when)
			if ocean.Tide == 0 {
				t.Fatal("expected a non-zero ocean tide")
			}
			// Loading grids are the ocean grids scaled and shifted by 180°.
			if want := -opts.loadRatio * ocean.Tide; math.Abs(load.Tide-want) > 1e-3 {
				t.Errorf("expected loading tide %.6f, got %.6f", want, load.Tide)
			}
			if load.LongPeriod != 0 {
				t.Errorf("expected no radial long-period tide, got %v", load.LongPeriod)
			}

			if variant.name == "amplitude phase" {
				reference = ocean.Tide
			} else if math.Abs(ocean.Tide-reference) > 1e-3 {
				t.Errorf("expected %.6f as with amplitude/phase files, got %.6f", reference, ocean.Tide)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*options)
	}{
		{"unknown region", func(o *options) { o.region = "atlantis" }},
		{"empty grid", func(o *options) { o.custom.LatMax = o.custom.LatMin }},
		{"zero resolution", func(o *options) { o.custom.Resolution = 0 }},
		{"missing table", func(o *options) { o.csvPath = filepath.Join(t.TempDir(), "none.csv") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.mutate(&opts)
			if err := run(opts, zap.NewNop()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAxes(t *testing.T) {
	tests := []struct {
		name             string
		grid             RegionalGrid
		nLat, nLon       int
		lastLat, lastLon float64
	}{
		{"regional", RegionalGrid{LatMin: 44, LatMax: 46, LonMin: -3, LonMax: 0, Resolution: 0.5}, 5, 7, 46, 0},
		{"global drops closing column", RegionalGrid{LatMin: -90, LatMax: 90, LonMin: 0, LonMax: 360, Resolution: 0.5, Global: true}, 361, 720, 90, 359.5},
	}
	for _, tt := range tests {
		lat, lon := tt.grid.axes()
		if len(lat) != tt.nLat || len(lon) != tt.nLon {
			t.Errorf("%s: expected %dx%d, got %dx%d", tt.name, tt.nLat, tt.nLon, len(lat), len(lon))
			continue
		}
		if lat[len(lat)-1] != tt.lastLat || lon[len(lon)-1] != tt.lastLon {
			t.Errorf("%s: expected last node (%v, %v), got (%v, %v)", tt.name, tt.lastLat, tt.lastLon, lat[len(lat)-1], lon[len(lon)-1])
		}
	}
}

func TestField(t *testing.T) {
	lat := []float64{40, 45, 50}
	lon := []float64{-10, -5, 0, 5}
	amp, pha := field(100, 350, lat, lon, 45, -5)

	for k := range amp {
		if amp[k] < 100*0.5*0.7 || amp[k] > 100*1.3 {
			t.Errorf("node %d: amplitude %.3f out of the taper range", k, amp[k])
		}
		if pha[k] < 0 || pha[k] >= 360 {
			t.Errorf("node %d: phase %.3f not in [0, 360)", k, pha[k])
		}
	}
}

func TestLoading(t *testing.T) {
	amp, pha := loading([]float64{10, 4}, []float64{90, 270}, 0.05)
	want := [][2]float64{{0.5, 270}, {0.2, 90}}
	for k := range amp {
		if math.Abs(amp[k]-want[k][0]) > 1e-12 || math.Abs(pha[k]-want[k][1]) > 1e-12 {
			t.Errorf("node %d: expected %v, got (%v, %v)", k, want[k], amp[k], pha[k])
		}
	}
}
