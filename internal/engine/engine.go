// Package engine manages tide prediction sessions: one handle owns the
// grids of one tide type and evaluates the tide at any point and time.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store/fes"
	"github.com/oceanscan/pulvis-fes-api/internal/config"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

// State is the lifecycle state of a Handle.
type State int

const (
	Unopened State = iota
	Opened
	Closed
	// Failed is terminal: the open attempt failed and nothing is held.
	Failed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Opened:
		return "open"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tide at one point and time, in the grid unit.
type Result struct {
	Tide       float64 // Short-period tide, including inferred minor waves.
	LongPeriod float64 // Long-period tide. Always 0 for radial sessions.

	// Missing counts gridded waves without data at the point. A non-zero
	// value means the heights are a best-effort sum.
	Missing int
}

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithLoader replaces the NetCDF grid loader.
func WithLoader(loader store.Loader) Option {
	return func(h *Handle) {
		h.loader = loader
	}
}

// Handle is one prediction session.
//
// Evaluate may be called from several goroutines once Open has returned.
// Close must not run concurrently with Evaluate.
//
// In io mode rows are validated when first read, so a corrupt value
// (a negative amplitude for instance) surfaces as ErrCorruptData from the
// Evaluate calls that touch its row rather than from Open. Other rows stay
// usable and the handle remains open.
type Handle struct {
	id     string
	logger *zap.Logger
	loader store.Loader

	state    State
	err      error
	tideType domain.TideType
	settings config.Settings

	grids      *store.GridSet
	gridded    map[string]int // Wave name to index in grids.Waves.
	admittance []domain.Admittance
	unitScale  float64
}

// New creates an unopened handle.
func New(opts ...Option) *Handle {
	h := &Handle{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.loader == nil {
		h.loader = fes.NewStore(h.logger)
	}
	h.logger = h.logger.With(zap.String("handle", h.id))
	return h
}

// Open creates a handle and opens it. On error no handle is returned.
func Open(tideType domain.TideType, mode store.IOMode, settings config.Settings, opts ...Option) (*Handle, error) {
	h := New(opts...)
	if err := h.Open(tideType, mode, settings); err != nil {
		return nil, err
	}
	return h, nil
}

// OpenFile reads a settings file and opens a handle with the io mode it
// names.
func OpenFile(tideType domain.TideType, path string, opts ...Option) (*Handle, error) {
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	mode, err := settings.Mode()
	if err != nil {
		return nil, err
	}
	return Open(tideType, mode, settings, opts...)
}

// Open loads the grids of tideType. It may only be called on an unopened
// handle. A failed open leaves the handle in the Failed state.
func (h *Handle) Open(tideType domain.TideType, mode store.IOMode, settings config.Settings) error {
	if h.state != Unopened {
		return fmt.Errorf("%w: open on a %s handle", domain.ErrInvalidState, h.state)
	}

	fail := func(err error) error {
		h.state = Failed
		h.err = err
		h.logger.Error("failed to open handle",
			zap.Stringer("tide_type", tideType),
			zap.Stringer("kind", domain.KindOf(err)),
			zap.Error(err),
		)
		return err
	}

	if err := settings.Validate(); err != nil {
		return fail(err)
	}
	if err := settings.CheckDataRoot(); err != nil {
		return fail(err)
	}
	sources, err := settings.Sources(tideType)
	if err != nil {
		return fail(err)
	}
	grids, err := h.loader.Load(tideType, sources, mode)
	if err != nil {
		return fail(err)
	}

	h.tideType = tideType
	h.settings = settings
	h.grids = grids
	h.unitScale = settings.UnitScale()
	h.gridded = make(map[string]int, len(grids.Waves))
	for i, wg := range grids.Waves {
		h.gridded[wg.Wave.Name] = i
	}
	if settings.Admittance {
		h.admittance = domain.PlanAdmittance(h.isGridded)
	}
	h.state = Opened

	h.logger.Info("opened handle",
		zap.Stringer("tide_type", tideType),
		zap.Stringer("mode", mode),
		zap.String("data_root", settings.DataRoot),
		zap.Int("waves", len(grids.Waves)),
		zap.Int("inferred", len(h.admittance)),
		zap.Bool("lp_equilibrium", settings.LongPeriodEquilibrium && tideType == domain.Ocean),
	)
	return nil
}

// Evaluate returns the tide at (lat, lon) at time t.
func (h *Handle) Evaluate(lat, lon float64, t time.Time) (Result, error) {
	return h.EvaluateCNES(lat, lon, domain.CNESDays(t))
}

// EvaluateCNES returns the tide at (lat, lon) at days since 1950-01-01 UTC.
func (h *Handle) EvaluateCNES(lat, lon, days float64) (Result, error) {
	if h.state != Opened {
		return Result{}, fmt.Errorf("%w: evaluate on a %s handle", domain.ErrInvalidState, h.state)
	}
	if !finite(lat) || !finite(lon) || !finite(days) {
		return Result{}, fmt.Errorf("%w: non-finite input (%g, %g, %g)", domain.ErrInvalidArgument, lat, lon, days)
	}
	if lat < -90 || lat > 90 {
		return Result{}, fmt.Errorf("%w: latitude %g outside [-90, 90]", domain.ErrInvalidArgument, lat)
	}

	var res Result
	values := make([]complex128, len(h.grids.Waves))
	defined := make([]bool, len(h.grids.Waves))
	partials := make([]domain.Partial, 0, len(h.grids.Waves)+len(h.admittance))
	for i, wg := range h.grids.Waves {
		z, ok, err := wg.Grid.Interpolate(lat, lon)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read %s grid: %w", wg.Wave.Name, err)
		}
		if !ok {
			res.Missing++
			continue
		}
		values[i], defined[i] = z, true
		partials = append(partials, domain.Partial{Wave: wg.Wave, Z: z})
	}

	for _, ad := range h.admittance {
		lo, loOK := h.major(ad.Lower, values, defined)
		hi, hiOK := h.major(ad.Upper, values, defined)
		if z, ok := ad.Infer(lo, loOK, hi, hiOK); ok {
			partials = append(partials, domain.Partial{Wave: ad.Minor, Z: z})
		}
	}

	a := domain.NewAstronomicAngle(days)
	res.Tide, res.LongPeriod = domain.Synthesize(partials, a)

	switch {
	case h.tideType == domain.Radial:
		// The long-period loading tide is not modelled.
		res.LongPeriod = 0
	case h.settings.LongPeriodEquilibrium:
		res.LongPeriod += domain.LongPeriodEquilibrium(lat, a, h.isGridded) * h.unitScale
	}
	return res, nil
}

// Close releases the grids. It is a no-op on a handle that is not open.
func (h *Handle) Close() error {
	if h.state != Opened {
		return nil
	}
	h.state = Closed
	err := h.grids.Close()
	h.grids = nil
	h.gridded = nil
	h.admittance = nil
	if err != nil {
		h.logger.Warn("failed to release grids", zap.Error(err))
		return fmt.Errorf("failed to release grids: %w", err)
	}
	h.logger.Info("closed handle")
	return nil
}

// State returns the lifecycle state.
func (h *Handle) State() State { return h.state }

// Err returns the error of a failed open, or nil.
func (h *Handle) Err() error { return h.err }

// ID identifies the handle in logs.
func (h *Handle) ID() string { return h.id }

// TideType returns the tide type of an open handle.
func (h *Handle) TideType() domain.TideType { return h.tideType }

// Waves returns the gridded waves of an open handle, in load order.
func (h *Handle) Waves() []*domain.Constituent {
	if h.grids == nil {
		return nil
	}
	waves := make([]*domain.Constituent, 0, len(h.grids.Waves))
	for _, wg := range h.grids.Waves {
		waves = append(waves, wg.Wave)
	}
	return waves
}

// Inferred returns the waves rebuilt by admittance.
func (h *Handle) Inferred() []*domain.Constituent {
	waves := make([]*domain.Constituent, 0, len(h.admittance))
	for _, ad := range h.admittance {
		waves = append(waves, ad.Minor)
	}
	return waves
}

func (h *Handle) isGridded(name string) bool {
	_, ok := h.gridded[name]
	return ok
}

func (h *Handle) major(c *domain.Constituent, values []complex128, defined []bool) (complex128, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := h.gridded[c.Name]
	if !ok || !defined[i] {
		return 0, false
	}
	return values[i], true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
