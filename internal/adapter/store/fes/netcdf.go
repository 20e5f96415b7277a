// Package fes loads FES2014/2022 NetCDF tidal atlases into interpolation grids.
package fes

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"
	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/interp"
	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

// ncMu serialises every call into the netCDF C library, which is not
// thread-safe.
//
//nolint:gochecknoglobals // Guards a process-wide C library.
var ncMu sync.Mutex

// closeDataset releases a file. Tests replace it to simulate failures.
//
//nolint:gochecknoglobals // Test seam.
var closeDataset = func(nc netcdf.Dataset) error { return nc.Close() }

// Variable names tried when a source does not name them.
//
//nolint:gochecknoglobals // Read-only name lists.
var (
	latNames  = []string{"lat", "latitude", "y"}
	lonNames  = []string{"lon", "longitude", "x"}
	ampNames  = []string{"amplitude", "amp", "Ha", "HA", "ha"}
	phaNames  = []string{"phase", "pha", "Hg", "HG", "hg", "g"}
	realNames = []string{"hRe", "Hre", "Re", "real"}
	imagNames = []string{"hIm", "Him", "Im", "imag"}
)

// Store loads wave grids from NetCDF files.
type Store struct {
	logger *zap.Logger
}

var _ store.Loader = (*Store)(nil)

// NewStore creates a NetCDF store. A nil logger disables logging.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Load opens and validates every source. In memory mode the values are
// read at once and the files closed; in io mode the files stay open
// until the returned set is closed. On error nothing stays open.
func (s *Store) Load(tideType domain.TideType, sources []store.WaveSource, mode store.IOMode) (*store.GridSet, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no %s waves configured", domain.ErrConfig, tideType)
	}

	var open []*waveFile
	release := func() error {
		var errs []error
		for _, wf := range open {
			errs = append(errs, wf.close())
		}
		open = nil
		return errors.Join(errs...)
	}

	set := &store.GridSet{TideType: tideType, Mode: mode}
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		wave, ok := domain.Lookup(src.Wave)
		if !ok {
			_ = release()
			return nil, fmt.Errorf("%w: unknown wave %q", domain.ErrConfig, src.Wave)
		}
		if seen[wave.Name] {
			_ = release()
			return nil, fmt.Errorf("%w: wave %s configured twice", domain.ErrConfig, wave.Name)
		}
		seen[wave.Name] = true

		wf, err := openWave(src)
		if err != nil {
			_ = release()
			return nil, fmt.Errorf("failed to load %s grid %s: %w", tideType, wave.Name, err)
		}

		var nodes interp.Nodes
		if mode == store.IO {
			open = append(open, wf)
			nodes = newLazyNodes(wf)
		} else {
			dense, err := wf.readAll()
			if closeErr := wf.close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			if err != nil {
				_ = release()
				return nil, fmt.Errorf("failed to load %s grid %s: %w", tideType, wave.Name, err)
			}
			nodes = dense
		}

		set.Waves = append(set.Waves, store.WaveGrid{
			Wave: wave,
			Grid: &interp.Grid{Lat: wf.lat, Lon: wf.lon, Nodes: nodes},
		})
		s.logger.Debug("loaded wave grid",
			zap.String("wave", wave.Name),
			zap.String("path", src.Path),
			zap.Int("nlat", wf.lat.Len),
			zap.Int("nlon", wf.lon.Len),
			zap.Float64("step", wf.lon.Step),
			zap.Bool("circular", wf.lon.Circular),
			zap.Stringer("mode", mode),
		)
	}

	if len(open) > 0 {
		set.Release = release
	}
	return set, nil
}

// waveFile is one validated NetCDF wave file.
type waveFile struct {
	path string
	nc   netcdf.Dataset

	lat, lon interp.Axis
	nLonFile int  // Longitude count on disk, including a duplicated closing column.
	latMajor bool // Data laid out as [lat, lon] rather than [lon, lat].

	// a and b hold amplitude/phase, or real/imaginary when pair is set.
	a, b       netcdf.Var
	decA, decB decoder
	pair       bool
}

func openWave(src store.WaveSource) (*waveFile, error) {
	if _, err := os.Stat(src.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	ncMu.Lock()
	defer ncMu.Unlock()

	nc, err := netcdf.OpenFile(src.Path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file %s: %v", domain.ErrDataUnavailable, src.Path, err)
	}
	wf := &waveFile{path: src.Path, nc: nc}
	if err := wf.resolve(src); err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptData, src.Path, err)
	}
	return wf, nil
}

// resolve finds and validates the axes and data variables.
//
//nolint:gocyclo // One check per variable.
func (wf *waveFile) resolve(src store.WaveSource) error {
	latVar, err := findVar(wf.nc, src.Latitude, latNames)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lats, err := readAxis(latVar)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	for i, v := range lats {
		if v < -90 || v > 90 || math.IsNaN(v) {
			return fmt.Errorf("latitude %d out of range: %g", i, v)
		}
	}
	if wf.lat, err = interp.NewLatAxis(lats); err != nil {
		return fmt.Errorf("latitude: %w", err)
	}

	lonVar, err := findVar(wf.nc, src.Longitude, lonNames)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	lons, err := readAxis(lonVar)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if wf.lon, err = interp.NewLonAxis(lons); err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	wf.nLonFile = len(lons)

	if err := wf.resolveData(src); err != nil {
		return err
	}

	for _, v := range []netcdf.Var{wf.a, wf.b} {
		if err := wf.checkShape(v); err != nil {
			return err
		}
	}
	wf.decA = newDecoder(wf.a)
	wf.decB = newDecoder(wf.b)
	return nil
}

// resolveData picks the amplitude/phase pair or the real/imaginary pair.
func (wf *waveFile) resolveData(src store.WaveSource) error {
	if src.Real == "" && src.Imaginary == "" {
		a, errA := findVar(wf.nc, src.Amplitude, ampNames)
		b, errB := findVar(wf.nc, src.Phase, phaNames)
		if errA == nil && errB == nil {
			wf.a, wf.b = a, b
			return nil
		}
		if src.Amplitude != "" || src.Phase != "" {
			return fmt.Errorf("amplitude/phase: %w", errors.Join(errA, errB))
		}
	}

	re, errRe := findVar(wf.nc, src.Real, realNames)
	im, errIm := findVar(wf.nc, src.Imaginary, imagNames)
	if errRe != nil || errIm != nil {
		return fmt.Errorf("no amplitude/phase or real/imaginary pair: %w", errors.Join(errRe, errIm))
	}
	wf.a, wf.b, wf.pair = re, im, true
	return nil
}

// checkShape accepts [lat, lon] and [lon, lat] layouts.
func (wf *waveFile) checkShape(v netcdf.Var) error {
	name, _ := v.Name()
	dims, err := v.Dims()
	if err != nil {
		return fmt.Errorf("%s: failed to get dimensions: %w", name, err)
	}
	if len(dims) != 2 {
		return fmt.Errorf("%s: expected 2D data, got %dD", name, len(dims))
	}
	d0, err := dims[0].Len()
	if err != nil {
		return fmt.Errorf("%s: failed to get dim0 length: %w", name, err)
	}
	d1, err := dims[1].Len()
	if err != nil {
		return fmt.Errorf("%s: failed to get dim1 length: %w", name, err)
	}

	nLat, nLon := uint64(wf.lat.Len), uint64(wf.nLonFile) //nolint:gosec // Lengths are positive.
	var latMajor bool
	switch {
	case d0 == nLat && d1 == nLon:
		latMajor = true
	case d0 == nLon && d1 == nLat:
		latMajor = false
	default:
		return fmt.Errorf("%s: dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			name, d0, d1, nLat, nLon, nLon, nLat)
	}
	if v == wf.a {
		wf.latMajor = latMajor
	} else if latMajor != wf.latMajor {
		return fmt.Errorf("%s: layout differs from its companion variable", name)
	}
	return nil
}

// cell decodes one pair of raw values into a complex amplitude.
func (wf *waveFile) cell(ra, rb float64) (complex128, error) {
	x, okA := wf.decA.decode(ra)
	y, okB := wf.decB.decode(rb)
	if !okA || !okB {
		return interp.Undefined, nil
	}
	if wf.pair {
		return complex(x, -y), nil
	}
	if x < 0 {
		return 0, fmt.Errorf("%w: %s: negative amplitude %g", domain.ErrCorruptData, wf.path, x)
	}
	return domain.FromPolar(x, y), nil
}

// readAll reads the whole grid.
func (wf *waveFile) readAll() (*interp.Dense, error) {
	ncMu.Lock()
	defer ncMu.Unlock()

	n := wf.lat.Len * wf.nLonFile
	a, err := readValues(wf.a, nil, nil, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptData, wf.path, err)
	}
	b, err := readValues(wf.b, nil, nil, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptData, wf.path, err)
	}

	nLon := wf.lon.Len
	values := make([]complex128, wf.lat.Len*nLon)
	for i := 0; i < wf.lat.Len; i++ {
		for j := 0; j < nLon; j++ {
			idx := i*wf.nLonFile + j
			if !wf.latMajor {
				idx = j*wf.lat.Len + i
			}
			z, err := wf.cell(a[idx], b[idx])
			if err != nil {
				return nil, err
			}
			values[i*nLon+j] = z
		}
	}
	return &interp.Dense{NLon: nLon, Values: values}, nil
}

// readRow reads one latitude row.
func (wf *waveFile) readRow(iLat int) ([]complex128, error) {
	ncMu.Lock()
	defer ncMu.Unlock()

	//nolint:gosec // G115: Indices are non-negative.
	start, count := []uint64{uint64(iLat), 0}, []uint64{1, uint64(wf.nLonFile)}
	if !wf.latMajor {
		//nolint:gosec // G115: Indices are non-negative.
		start, count = []uint64{0, uint64(iLat)}, []uint64{uint64(wf.nLonFile), 1}
	}

	a, err := readValues(wf.a, start, count, wf.nLonFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrCorruptData, wf.path, iLat, err)
	}
	b, err := readValues(wf.b, start, count, wf.nLonFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrCorruptData, wf.path, iLat, err)
	}

	row := make([]complex128, wf.lon.Len)
	for j := range row {
		if row[j], err = wf.cell(a[j], b[j]); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func (wf *waveFile) close() error {
	ncMu.Lock()
	defer ncMu.Unlock()
	if err := closeDataset(wf.nc); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", domain.ErrDataUnavailable, wf.path, err)
	}
	return nil
}

// findVar returns the configured variable, or the first candidate present.
func findVar(nc netcdf.Dataset, configured string, candidates []string) (netcdf.Var, error) {
	if configured != "" {
		v, err := nc.Var(configured)
		if err != nil {
			return netcdf.Var{}, fmt.Errorf("variable %q not found", configured)
		}
		return v, nil
	}
	for _, name := range candidates {
		if v, err := nc.Var(name); err == nil {
			return v, nil
		}
	}
	return netcdf.Var{}, fmt.Errorf("variable not found (tried: %v)", candidates)
}

// readAxis reads a 1D coordinate variable.
func readAxis(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readValues(v, nil, nil, int(length)) //nolint:gosec // Axis lengths fit in int.
}

// readValues reads n values as float64, either the whole variable (nil
// start) or the hyperslab given by start and count.
//
//nolint:gocyclo // One branch per NetCDF type.
func readValues(v netcdf.Var, start, count []uint64, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if start == nil {
			err = v.ReadFloat64s(out)
		} else {
			err = v.ReadFloat64Slice(out, start, count)
		}
		return out, err
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if start == nil {
			err = v.ReadFloat32s(tmp)
		} else {
			err = v.ReadFloat32Slice(tmp, start, count)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if start == nil {
			err = v.ReadInt32s(tmp)
		} else {
			err = v.ReadInt32Slice(tmp, start, count)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if start == nil {
			err = v.ReadInt16s(tmp)
		} else {
			err = v.ReadInt16Slice(tmp, start, count)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.BYTE, netcdf.CHAR, netcdf.UBYTE, netcdf.USHORT, netcdf.UINT, netcdf.INT64, netcdf.UINT64, netcdf.STRING:
		return nil, fmt.Errorf("unsupported data type: %v (expected DOUBLE, FLOAT, INT, or SHORT)", t)
	default:
		return nil, fmt.Errorf("unsupported data type: %v", t)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decoder turns packed values into physical ones.
type decoder struct {
	fill    float64
	hasFill bool
	scale   float64
	offset  float64
}

func newDecoder(v netcdf.Var) decoder {
	d := decoder{scale: 1}
	d.fill, d.hasFill = getFillValue(v)
	if s, ok := readScalarAttr(v, "scale_factor"); ok && s != 0 {
		d.scale = s
	}
	if o, ok := readScalarAttr(v, "add_offset"); ok {
		d.offset = o
	}
	return d
}

// decode returns false for fill values and non-finite cells.
func (d decoder) decode(raw float64) (float64, bool) {
	if d.hasFill && raw == d.fill {
		return 0, false
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false
	}
	return raw*d.scale + d.offset, true
}

// getFillValue returns the _FillValue or missing_value attribute if present as float64.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		if fv, ok := readScalarAttr(v, name); ok {
			return fv, true
		}
	}
	return 0, false
}

// readScalarAttr reads the first value of a numeric attribute.
func readScalarAttr(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	buf64 := make([]float64, n)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], true
	}
	buf32 := make([]float32, n)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), true
	}
	bufi := make([]int32, n)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), true
	}
	bufs := make([]int16, n)
	if err := a.ReadInt16s(bufs); err == nil {
		return float64(bufs[0]), true
	}
	return 0, false
}
