// Package csv reads harmonic constituent tables (wave, amplitude, phase).
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

// Row is one constituent of a table.
type Row struct {
	Wave      *domain.Constituent
	Amplitude float64
	PhaseDeg  float64 // Greenwich phase lag.
}

// Table is a parsed constituent file.
type Table struct {
	Unit string // "m" or "cm", from the amplitude column header.
	Rows []Row
}

// amplitudeColumns maps accepted amplitude headers to their unit.
//
//nolint:gochecknoglobals // Read-only.
var amplitudeColumns = map[string]string{
	"amplitude_m":  "m",
	"amplitude_cm": "cm",
}

// LoadFile reads a constituent table from path.
func LoadFile(path string) (*Table, error) {
	//nolint:gosec // G304: Path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open constituent table %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return Load(file)
}

// Load reads a table with the header constituent,amplitude_m|amplitude_cm,phase_deg.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) != 3 {
		return nil, fmt.Errorf("invalid CSV header: expected 3 columns, got %v", header)
	}
	if header[0] != "constituent" || header[2] != "phase_deg" {
		return nil, fmt.Errorf("invalid CSV header: expected constituent,amplitude_m,phase_deg, got %v", header)
	}
	unit, ok := amplitudeColumns[header[1]]
	if !ok {
		return nil, fmt.Errorf("invalid CSV header: unknown amplitude column %s", header[1])
	}

	table := &Table{Unit: unit}
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		name := strings.TrimSpace(record[0])
		wave, ok := domain.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown constituent: %s", name)
		}
		if seen[wave.Name] {
			return nil, fmt.Errorf("constituent %s listed twice", wave.Name)
		}
		seen[wave.Name] = true

		amplitude, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amplitude for constituent %s: %w", name, err)
		}
		if amplitude < 0 {
			return nil, fmt.Errorf("negative amplitude for constituent %s", name)
		}
		phase, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid phase for constituent %s: %w", name, err)
		}

		table.Rows = append(table.Rows, Row{Wave: wave, Amplitude: amplitude, PhaseDeg: phase})
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("no constituents found in CSV")
	}
	return table, nil
}
