// Package config reads engine settings files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

// WaveFile locates one wave's grid. Empty variable names use the FES defaults.
type WaveFile struct {
	File      string `mapstructure:"file"`
	Latitude  string `mapstructure:"latitude"`
	Longitude string `mapstructure:"longitude"`
	Amplitude string `mapstructure:"amplitude"`
	Phase     string `mapstructure:"phase"`
	Real      string `mapstructure:"real"`
	Imaginary string `mapstructure:"imaginary"`
}

// Settings is the content of a settings file.
type Settings struct {
	DataRoot              string              `mapstructure:"data_root"`
	IOMode                string              `mapstructure:"io_mode"`
	Admittance            bool                `mapstructure:"admittance"`
	LongPeriodEquilibrium bool                `mapstructure:"long_period_equilibrium"`
	Unit                  string              `mapstructure:"unit"`
	Ocean                 map[string]WaveFile `mapstructure:"ocean"`
	Radial                map[string]WaveFile `mapstructure:"radial"`
}

// unitScales converts metres to the grid unit.
//
//nolint:gochecknoglobals // Read-only.
var unitScales = map[string]float64{
	"m":  1,
	"cm": 100,
	"mm": 1000,
}

// placeholders are replaced by the data root in file paths.
//
//nolint:gochecknoglobals // Read-only.
var placeholders = []string{"${FES_DATA}", "$FES_DATA", "${data_root}"}

// Defaults returns settings with every option at its default.
func Defaults() Settings {
	return Settings{
		IOMode:                store.Memory.String(),
		Admittance:            true,
		LongPeriodEquilibrium: true,
		Unit:                  "cm",
	}
}

// Load reads a YAML, TOML or JSON settings file. The format follows the
// file extension.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, fmt.Errorf("%w: no settings file given", domain.ErrConfig)
	}

	v := viper.New()
	v.SetConfigFile(path)

	defaults := Defaults()
	v.SetDefault("io_mode", defaults.IOMode)
	v.SetDefault("admittance", defaults.Admittance)
	v.SetDefault("long_period_equilibrium", defaults.LongPeriodEquilibrium)
	v.SetDefault("unit", defaults.Unit)

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("%w: failed to read settings %s: %w", domain.ErrConfig, path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: failed to decode settings %s: %w", domain.ErrConfig, path, err)
	}

	// A relative data root is relative to the settings file.
	if s.DataRoot != "" && !filepath.IsAbs(s.DataRoot) {
		s.DataRoot = filepath.Join(filepath.Dir(path), s.DataRoot)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks option values. It does not touch the filesystem.
func (s Settings) Validate() error {
	var errs []error
	if s.DataRoot == "" {
		errs = append(errs, errors.New("data_root is not set"))
	}
	if _, err := store.ParseIOMode(s.IOMode); err != nil {
		errs = append(errs, err)
	}
	if _, ok := unitScales[strings.ToLower(s.Unit)]; !ok {
		errs = append(errs, fmt.Errorf("unknown unit %q", s.Unit))
	}
	for section, waves := range map[string]map[string]WaveFile{"ocean": s.Ocean, "radial": s.Radial} {
		for name, wf := range waves {
			if _, ok := domain.Lookup(name); !ok {
				errs = append(errs, fmt.Errorf("%s: unknown wave %q", section, name))
			}
			if wf.File == "" {
				errs = append(errs, fmt.Errorf("%s.%s: file is not set", section, name))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Mode returns the parsed io_mode.
func (s Settings) Mode() (store.IOMode, error) {
	return store.ParseIOMode(s.IOMode)
}

// UnitScale returns the number of grid units per metre.
func (s Settings) UnitScale() float64 {
	if scale, ok := unitScales[strings.ToLower(s.Unit)]; ok {
		return scale
	}
	return unitScales[Defaults().Unit]
}

// Sources lists the wave files of one tide type with resolved paths,
// ordered by wave name.
func (s Settings) Sources(tideType domain.TideType) ([]store.WaveSource, error) {
	waves := s.Ocean
	if tideType == domain.Radial {
		waves = s.Radial
	}
	if len(waves) == 0 {
		return nil, fmt.Errorf("%w: no %s waves configured", domain.ErrConfig, tideType)
	}

	sources := make([]store.WaveSource, 0, len(waves))
	for name, wf := range waves {
		wave, ok := domain.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown wave %q", domain.ErrConfig, name)
		}
		sources = append(sources, store.WaveSource{
			Wave:      wave.Name,
			Path:      s.resolve(wf.File),
			Latitude:  wf.Latitude,
			Longitude: wf.Longitude,
			Amplitude: wf.Amplitude,
			Phase:     wf.Phase,
			Real:      wf.Real,
			Imaginary: wf.Imaginary,
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Wave < sources[j].Wave })
	return sources, nil
}

// CheckDataRoot reports ErrDataUnavailable when the data root is not a
// readable directory.
func (s Settings) CheckDataRoot() error {
	info, err := os.Stat(s.DataRoot)
	if err != nil {
		return fmt.Errorf("%w: data root %s: %w", domain.ErrDataUnavailable, s.DataRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: data root %s is not a directory", domain.ErrDataUnavailable, s.DataRoot)
	}
	return nil
}

func (s Settings) resolve(file string) string {
	for _, p := range placeholders {
		file = strings.ReplaceAll(file, p, s.DataRoot)
	}
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(s.DataRoot, file)
}
