// Package main generates synthetic FES-layout tidal atlases and a matching
// settings file from a constituent table, for demos and integration tests.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store/csv"
	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store/fes"
)

// RegionalGrid defines the geographic bounds and resolution
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
	Global     bool    // Longitudes cover the whole circle, without a closing column.
}

type options struct {
	csvPath    string
	outDir     string
	region     string
	custom     RegionalGrid
	refLat     float64
	refLon     float64
	loadRatio  float64
	complexOut bool
	lonMajor   bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "fes-generator",
		Short: "Generate synthetic FES NetCDF grids and a settings file",
		Long: `Reads a constituent table (constituent,amplitude_m|amplitude_cm,phase_deg)
and writes one grid per wave with smooth spatial variation around a
reference point, plus radial loading grids and fes.yaml.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return run(opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "./data/brest_constituents.csv", "Path to CSV file with constituent data")
	f.StringVar(&opts.outDir, "out", "./data/fes", "Output directory for NetCDF files and fes.yaml")
	f.StringVar(&opts.region, "region", "biscay", "Region: biscay, global, or custom")
	f.Float64Var(&opts.custom.LatMin, "lat-min", 40.0, "Minimum latitude (custom region)")
	f.Float64Var(&opts.custom.LatMax, "lat-max", 50.0, "Maximum latitude (custom region)")
	f.Float64Var(&opts.custom.LonMin, "lon-min", -10.0, "Minimum longitude (custom region)")
	f.Float64Var(&opts.custom.LonMax, "lon-max", 0.0, "Maximum longitude (custom region)")
	f.Float64Var(&opts.custom.Resolution, "resolution", 0.125, "Grid resolution in degrees")
	f.Float64Var(&opts.refLat, "ref-lat", 48.38, "Reference point latitude, where the table applies")
	f.Float64Var(&opts.refLon, "ref-lon", -4.49, "Reference point longitude, where the table applies")
	f.Float64Var(&opts.loadRatio, "load-ratio", 0.05, "Radial loading amplitude as a fraction of the ocean tide (0 disables)")
	f.BoolVar(&opts.complexOut, "complex", false, "Write real/imaginary parts instead of amplitude/phase")
	f.BoolVar(&opts.lonMajor, "lon-major", false, "Write data as [lon, lat]")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func regionGrid(opts options) (RegionalGrid, error) {
	switch opts.region {
	case "biscay":
		return RegionalGrid{LatMin: 43.0, LatMax: 49.0, LonMin: -6.0, LonMax: 0.0, Resolution: opts.custom.Resolution}, nil
	case "global":
		return RegionalGrid{LatMin: -90.0, LatMax: 90.0, LonMin: 0.0, LonMax: 360.0, Resolution: 0.5, Global: true}, nil
	case "custom":
		return opts.custom, nil
	default:
		return RegionalGrid{}, fmt.Errorf("unknown region: %s (use biscay, global, or custom)", opts.region)
	}
}

func run(opts options, logger *zap.Logger) error {
	grid, err := regionGrid(opts)
	if err != nil {
		return err
	}
	if !(grid.Resolution > 0) || grid.LatMax <= grid.LatMin || grid.LonMax <= grid.LonMin {
		return fmt.Errorf("invalid grid %+v", grid)
	}

	table, err := csv.LoadFile(opts.csvPath)
	if err != nil {
		return fmt.Errorf("failed to read CSV: %w", err)
	}
	logger.Info("loaded constituent table",
		zap.String("path", opts.csvPath),
		zap.Int("constituents", len(table.Rows)),
		zap.String("unit", table.Unit),
	)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil { //nolint:gosec // Output directory is meant to be shared.
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lat, lon := grid.axes()
	settings := viper.New()
	settings.Set("data_root", ".")
	settings.Set("io_mode", "memory")
	settings.Set("admittance", true)
	settings.Set("long_period_equilibrium", true)
	settings.Set("unit", table.Unit)

	for _, row := range table.Rows {
		name := strings.ToLower(row.Wave.Name)
		amp, pha := field(row.Amplitude, row.PhaseDeg, lat, lon, opts.refLat, opts.refLon)

		oceanFile := filepath.Join("ocean", name+".nc")
		if err := write(filepath.Join(opts.outDir, oceanFile), lat, lon, amp, pha, opts); err != nil {
			return fmt.Errorf("failed to write %s: %w", row.Wave.Name, err)
		}
		settings.Set("ocean."+name+".file", oceanFile)

		if opts.loadRatio > 0 {
			loadAmp, loadPha := loading(amp, pha, opts.loadRatio)
			loadFile := filepath.Join("load", name+".nc")
			if err := write(filepath.Join(opts.outDir, loadFile), lat, lon, loadAmp, loadPha, opts); err != nil {
				return fmt.Errorf("failed to write %s loading: %w", row.Wave.Name, err)
			}
			settings.Set("radial."+name+".file", loadFile)
		}
		logger.Debug("generated wave", zap.String("wave", row.Wave.Name))
	}

	settingsPath := filepath.Join(opts.outDir, "fes.yaml")
	if err := settings.WriteConfigAs(settingsPath); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	logger.Info("generation complete",
		zap.String("out", opts.outDir),
		zap.String("settings", settingsPath),
		zap.Int("nlat", len(lat)),
		zap.Int("nlon", len(lon)),
		zap.Float64("approx_mb", float64(len(lat)*len(lon)*4*2*len(table.Rows))/1024/1024),
	)
	return nil
}

func (g RegionalGrid) axes() (lat, lon []float64) {
	nLat := int(math.Round((g.LatMax-g.LatMin)/g.Resolution)) + 1
	nLon := int(math.Round((g.LonMax-g.LonMin)/g.Resolution)) + 1
	if g.Global {
		nLon--
	}

	lat = make([]float64, nLat)
	for i := range lat {
		lat[i] = g.LatMin + float64(i)*g.Resolution
	}
	lon = make([]float64, nLon)
	for j := range lon {
		lon[j] = g.LonMin + float64(j)*g.Resolution
	}
	return lat, lon
}

// field spreads a point constituent over the grid: amplitude tapers with
// distance from the reference point and phase drifts with it.
func field(amplitude, phaseDeg float64, lat, lon []float64, refLat, refLon float64) (amp, pha []float64) {
	nLon := len(lon)
	amp = make([]float64, len(lat)*nLon)
	pha = make([]float64, len(lat)*nLon)

	for i := range lat {
		for j := range lon {
			idx := i*nLon + j

			latDist := lat[i] - refLat
			lonDist := math.Remainder(lon[j]-refLon, 360)
			dist := math.Sqrt(latDist*latDist + lonDist*lonDist)

			// 100% at the reference point, never below 50%.
			distFactor := math.Max(math.Cos(dist*math.Pi/20.0), 0.5)

			spatialVar := 1.0 +
				0.15*math.Sin(lat[i]*math.Pi/15.0) +
				0.1*math.Cos(lon[j]*math.Pi/20.0) +
				0.05*math.Sin((lat[i]+lon[j])*math.Pi/25.0)

			amp[idx] = amplitude * distFactor * spatialVar

			// 2 degrees of phase per degree of distance.
			spatialPhase := 10.0*math.Sin(lat[i]*math.Pi/30.0) + 8.0*math.Cos(lon[j]*math.Pi/40.0)
			pha[idx] = math.Mod(phaseDeg+dist*2.0+spatialPhase, 360.0)
			if pha[idx] < 0 {
				pha[idx] += 360.0
			}
		}
	}
	return amp, pha
}

// loading derives a radial loading grid, roughly in antiphase with the
// ocean tide.
func loading(amp, pha []float64, ratio float64) (loadAmp, loadPha []float64) {
	loadAmp = make([]float64, len(amp))
	loadPha = make([]float64, len(pha))
	for k := range amp {
		loadAmp[k] = amp[k] * ratio
		loadPha[k] = math.Mod(pha[k]+180.0, 360.0)
	}
	return loadAmp, loadPha
}

func write(path string, lat, lon, amp, pha []float64, opts options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // Output directory is meant to be shared.
		return err
	}
	return fes.WriteWave(path, fes.WaveData{
		Lat:       lat,
		Lon:       lon,
		Amplitude: amp,
		Phase:     pha,
		Complex:   opts.complexOut,
		LonMajor:  opts.lonMajor,
	})
}
