package fes

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

// FillValue marks cells without data in written files.
const FillValue float32 = 1.844674e19

// WaveData is one wave's grid ready to be written in FES layout.
// Amplitude and Phase are stored latitude major; NaN cells are written
// as FillValue.
type WaveData struct {
	Lat       []float64
	Lon       []float64
	Amplitude []float64
	Phase     []float64 // Greenwich phase lag, degrees.

	// Complex writes hRe/hIm instead of amplitude/phase.
	Complex bool
	// LonMajor writes data as [lon, lat].
	LonMajor bool
}

// WriteWave writes w to path, replacing any existing file.
//
//nolint:gocyclo // Sequential NetCDF define and write steps.
func WriteWave(path string, w WaveData) error {
	nLat, nLon := len(w.Lat), len(w.Lon)
	if len(w.Amplitude) != nLat*nLon || len(w.Phase) != nLat*nLon {
		return fmt.Errorf("grid has %d/%d values, expected %d", len(w.Amplitude), len(w.Phase), nLat*nLon)
	}

	ncMu.Lock()
	defer ncMu.Unlock()

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = ds.Close() }()

	latDim, err := ds.AddDim("lat", uint64(nLat)) //nolint:gosec // Non-negative length.
	if err != nil {
		return fmt.Errorf("failed to add lat dimension: %w", err)
	}
	lonDim, err := ds.AddDim("lon", uint64(nLon)) //nolint:gosec // Non-negative length.
	if err != nil {
		return fmt.Errorf("failed to add lon dimension: %w", err)
	}
	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return fmt.Errorf("failed to add lat variable: %w", err)
	}
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return fmt.Errorf("failed to add lon variable: %w", err)
	}

	dims := []netcdf.Dim{latDim, lonDim}
	if w.LonMajor {
		dims = []netcdf.Dim{lonDim, latDim}
	}
	names := [2]string{"amplitude", "phase"}
	if w.Complex {
		names = [2]string{"hRe", "hIm"}
	}
	var vars [2]netcdf.Var
	for k, name := range names {
		if vars[k], err = ds.AddVar(name, netcdf.FLOAT, dims); err != nil {
			return fmt.Errorf("failed to add %s variable: %w", name, err)
		}
		if err := vars[k].Attr("_FillValue").WriteFloat32s([]float32{FillValue}); err != nil {
			return fmt.Errorf("failed to set %s fill value: %w", name, err)
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := latVar.WriteFloat64s(w.Lat); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := lonVar.WriteFloat64s(w.Lon); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}

	first := make([]float32, nLat*nLon)
	second := make([]float32, nLat*nLon)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			src := i*nLon + j
			dst := src
			if w.LonMajor {
				dst = j*nLat + i
			}
			amp, pha := w.Amplitude[src], w.Phase[src]
			if math.IsNaN(amp) || math.IsNaN(pha) {
				first[dst], second[dst] = FillValue, FillValue
				continue
			}
			if w.Complex {
				g := pha * math.Pi / 180
				amp, pha = amp*math.Cos(g), amp*math.Sin(g)
			}
			first[dst], second[dst] = float32(amp), float32(pha)
		}
	}
	if err := vars[0].WriteFloat32s(first); err != nil {
		return fmt.Errorf("failed to write %s: %w", names[0], err)
	}
	if err := vars[1].WriteFloat32s(second); err != nil {
		return fmt.Errorf("failed to write %s: %w", names[1], err)
	}
	return nil
}
