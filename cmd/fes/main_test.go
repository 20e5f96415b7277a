package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store/fes"
	"github.com/oceanscan/pulvis-fes-api/internal/config"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/engine"
)

const settingsYAML = `data_root: .
ocean:
  M2:
    file: m2.nc
radial:
  M2:
    file: load_m2.nc
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	lat := []float64{44, 45, 46}
	lon := []float64{-3, -2, -1, 0}

	for name, amp := range map[string]float64{"m2.nc": 150, "load_m2.nc": 5} {
		a := make([]float64, len(lat)*len(lon))
		p := make([]float64, len(a))
		for k := range a {
			a[k], p[k] = amp, 95
		}
		if err := fes.WriteWave(filepath.Join(dir, name), fes.WaveData{Lat: lat, Lon: lon, Amplitude: a, Phase: p}); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	path := filepath.Join(dir, "fes.yaml")
	if err := os.WriteFile(path, []byte(settingsYAML), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func expected(t *testing.T, path string, tideType domain.TideType, epoch float64) engine.Result {
	t.Helper()
	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h, err := engine.Open(tideType, store.Memory, s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = h.Close() }()
	r, err := h.EvaluateCNES(45, -1, domain.CNESDaysFromUnix(epoch))
	if err != nil {
		t.Fatalf("EvaluateCNES: %v", err)
	}
	return r
}

func TestPredict(t *testing.T) {
	path := writeFixture(t)
	const epoch = 1700000000

	ocean := expected(t, path, domain.Ocean, epoch)
	load := expected(t, path, domain.Radial, epoch)

	tests := []struct {
		name string
		args []string
		want float64
	}{
		{"geocentric", nil, ocean.Tide + ocean.LongPeriod + load.Tide},
		{"pure", []string{"--pure"}, ocean.Tide + ocean.LongPeriod},
		{"io mode", []string{"--io-mode", "io"}, ocean.Tide + ocean.LongPeriod + load.Tide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", path, "predict", "1700000000", "45", "-1"}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("predict: %v (%s)", err, out)
			}
			got, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
			if err != nil {
				t.Fatalf("parse output %q: %v", out, err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestPredict_Errors(t *testing.T) {
	path := writeFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing settings", []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "predict", "0", "45", "-1"}},
		{"bad number", []string{"--config", path, "predict", "now", "45", "-1"}},
		{"bad latitude", []string{"--config", path, "predict", "0", "95", "-1"}},
		{"bad io mode", []string{"--config", path, "predict", "0", "45", "-1", "--io-mode", "tape"}},
		{"wrong arity", []string{"--config", path, "predict", "0", "45"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWaves(t *testing.T) {
	out, err := execute(t, "waves")
	if err != nil {
		t.Fatalf("waves: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(domain.All())+1 {
		t.Errorf("expected header plus %d waves, got %d lines", len(domain.All()), len(lines))
	}
	if !strings.Contains(out, "255.555") {
		t.Error("expected M2's Doodson number in the listing")
	}
}

func TestEval(t *testing.T) {
	path := writeFixture(t)
	want := expected(t, path, domain.Radial, 1700000000)

	out, err := execute(t, "--config", path, "eval", "loading", "1700000000", "45", "-1")
	if err != nil {
		t.Fatalf("eval: %v (%s)", err, out)
	}
	if !strings.HasPrefix(out, "tide=") || !strings.Contains(out, "lp=0.000000 missing=0 unit=cm") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "tide="+strconv.FormatFloat(want.Tide, 'f', 6, 64)) {
		t.Errorf("expected tide %f in %q", want.Tide, out)
	}

	if _, err := execute(t, "--config", path, "eval", "tsunami", "0", "45", "-1"); err == nil {
		t.Error("expected an error for an unknown tide type")
	}
}

func TestArgs(t *testing.T) {
	out, err := execute(t, "args", "0")
	if err != nil {
		t.Fatalf("args: %v", err)
	}
	if !strings.HasPrefix(out, "# 1970-01-01T00:00:00Z (CNES day 7305.000000)") {
		t.Errorf("unexpected header in %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, name := range []string{"M2", "K1", "Mf", "2N2"} {
		if !strings.Contains(out, "\n"+name+" ") {
			t.Errorf("expected a row for %s", name)
		}
	}
}
