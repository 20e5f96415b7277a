package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

func writeSettings(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeSettings(t, "fes.yaml", `
data_root: /data/fes2014
io_mode: io
admittance: false
ocean:
  M2:
    file: ${FES_DATA}/ocean_tide/m2.nc
  K1:
    file: ocean_tide/k1.nc
    amplitude: Ha
    phase: Hg
radial:
  M2:
    file: /elsewhere/load_m2.nc
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DataRoot != "/data/fes2014" {
		t.Errorf("unexpected data root %s", s.DataRoot)
	}
	mode, err := s.Mode()
	if err != nil || mode != store.IO {
		t.Errorf("expected io mode, got %v (%v)", mode, err)
	}
	if s.Admittance {
		t.Error("expected admittance disabled")
	}
	if !s.LongPeriodEquilibrium || s.Unit != "cm" {
		t.Errorf("expected defaults for unset options, got %+v", s)
	}

	ocean, err := s.Sources(domain.Ocean)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	want := []store.WaveSource{
		{Wave: "K1", Path: "/data/fes2014/ocean_tide/k1.nc", Amplitude: "Ha", Phase: "Hg"},
		{Wave: "M2", Path: "/data/fes2014/ocean_tide/m2.nc"},
	}
	if diff := cmp.Diff(want, ocean); diff != "" {
		t.Errorf("ocean sources mismatch (-want +got):\n%s", diff)
	}

	radial, err := s.Sources(domain.Radial)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(radial) != 1 || radial[0].Path != "/elsewhere/load_m2.nc" {
		t.Errorf("unexpected radial sources %+v", radial)
	}
}

func TestLoad_TOMLRelativeRoot(t *testing.T) {
	path := writeSettings(t, "fes.toml", `
data_root = "grids"
unit = "m"

[ocean.S2]
file = "s2.nc"
real = "re"
imaginary = "im"
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantRoot := filepath.Join(filepath.Dir(path), "grids")
	if s.DataRoot != wantRoot {
		t.Errorf("expected data root %s, got %s", wantRoot, s.DataRoot)
	}
	if s.UnitScale() != 1 {
		t.Errorf("expected unit scale 1, got %g", s.UnitScale())
	}
	sources, err := s.Sources(domain.Ocean)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if sources[0].Path != filepath.Join(wantRoot, "s2.nc") || sources[0].Real != "re" {
		t.Errorf("unexpected source %+v", sources[0])
	}
	if _, err := s.Sources(domain.Radial); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig without radial waves, got %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "no data root", file: "a.yaml", content: "ocean:\n  M2:\n    file: m2.nc\n"},
		{name: "bad io mode", file: "b.yaml", content: "data_root: /d\nio_mode: tape\n"},
		{name: "bad unit", file: "c.yaml", content: "data_root: /d\nunit: ft\n"},
		{name: "unknown wave", file: "d.yaml", content: "data_root: /d\nocean:\n  XX9:\n    file: x.nc\n"},
		{name: "missing file entry", file: "e.yaml", content: "data_root: /d\nradial:\n  M2:\n    phase: g\n"},
		{name: "unsupported format", file: "f.ini", content: "data_root=/d\n"},
		{name: "malformed", file: "g.yaml", content: "data_root: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, tt.file, tt.content)
			if _, err := Load(path); !errors.Is(err, domain.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig for a missing file, got %v", err)
	}
	if _, err := Load(""); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig for an empty path, got %v", err)
	}
}

func TestCheckDataRoot(t *testing.T) {
	dir := t.TempDir()
	if err := (Settings{DataRoot: dir}).CheckDataRoot(); err != nil {
		t.Errorf("expected existing dir to pass, got %v", err)
	}

	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, root := range []string{filepath.Join(dir, "nope"), file} {
		if err := (Settings{DataRoot: root}).CheckDataRoot(); !errors.Is(err, domain.ErrDataUnavailable) {
			t.Errorf("%s: expected ErrDataUnavailable, got %v", root, err)
		}
	}
}

func TestUnitScale(t *testing.T) {
	tests := map[string]float64{"m": 1, "CM": 100, "mm": 1000, "": 100}
	for unit, want := range tests {
		if got := (Settings{Unit: unit}).UnitScale(); got != want {
			t.Errorf("unit %q: expected %g, got %g", unit, want, got)
		}
	}
}
