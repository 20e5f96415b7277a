// Package store describes tidal atlas files and the grids loaded from them.
package store

import (
	"fmt"
	"strings"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/interp"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

// IOMode selects how grid values are accessed after a session opens.
type IOMode int

const (
	// Memory reads every grid into memory at open.
	Memory IOMode = iota
	// IO keeps the files open and reads latitude rows on first use.
	IO
)

func (m IOMode) String() string {
	if m == IO {
		return "io"
	}
	return "memory"
}

// ParseIOMode accepts "memory" and "io" (case-insensitive).
func ParseIOMode(s string) (IOMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "memory", "mem":
		return Memory, nil
	case "io", "lazy", "mmap":
		return IO, nil
	default:
		return Memory, fmt.Errorf("%w: unknown io mode %q", domain.ErrConfig, s)
	}
}

// WaveSource tells where one wave's grid lives. Empty variable names fall
// back to the usual FES names.
type WaveSource struct {
	Wave string
	Path string

	Latitude  string
	Longitude string
	Amplitude string
	Phase     string
	Real      string
	Imaginary string
}

// WaveGrid pairs a catalog wave with its grid.
type WaveGrid struct {
	Wave *domain.Constituent
	Grid *interp.Grid
}

// GridSet is everything a session loaded for one tide type.
type GridSet struct {
	TideType domain.TideType
	Mode     IOMode
	Waves    []WaveGrid

	// Release frees resources still held by the grids (open files in io mode).
	Release func() error
}

// Close calls Release once.
func (g *GridSet) Close() error {
	if g == nil || g.Release == nil {
		return nil
	}
	release := g.Release
	g.Release = nil
	return release()
}

// Loader loads the grids of one tide type.
type Loader interface {
	Load(tideType domain.TideType, sources []WaveSource, mode IOMode) (*GridSet, error)
}
