package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	input := `constituent,amplitude_cm,phase_deg
# Brest-like values
M2, 205.3, 99.6
S2, 75.1, 139.2
k1, 6.4, 75.0
`
	table, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Unit != "cm" {
		t.Errorf("expected unit cm, got %s", table.Unit)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if r := table.Rows[2]; r.Wave.Name != "K1" || r.Amplitude != 6.4 || r.PhaseDeg != 75.0 {
		t.Errorf("unexpected row %+v", r)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"bad header":     "wave,amp,phase\nM2,1,0\n",
		"unknown unit":   "constituent,amplitude_ft,phase_deg\nM2,1,0\n",
		"unknown wave":   "constituent,amplitude_m,phase_deg\nXX,1,0\n",
		"duplicate":      "constituent,amplitude_m,phase_deg\nM2,1,0\nm2,1,0\n",
		"bad amplitude":  "constituent,amplitude_m,phase_deg\nM2,abc,0\n",
		"negative":       "constituent,amplitude_m,phase_deg\nM2,-1,0\n",
		"bad phase":      "constituent,amplitude_m,phase_deg\nM2,1,north\n",
		"no rows":        "constituent,amplitude_m,phase_deg\n",
		"column count":   "constituent,amplitude_m,phase_deg\nM2,1\n",
		"empty document": "",
	}

	for name, input := range tests {
		if _, err := Load(strings.NewReader(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	if err := os.WriteFile(path, []byte("constituent,amplitude_m,phase_deg\nO1,0.065,330\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Unit != "m" || table.Rows[0].Wave.Name != "O1" {
		t.Errorf("unexpected table %+v", table)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
