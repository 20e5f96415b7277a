package usecase

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/engine"
	"github.com/oceanscan/pulvis-fes-api/internal/metrics"
)

// Prediction kinds.
const (
	// KindGeocentric adds the radial loading tide to the ocean tide, as
	// seen by an altimeter.
	KindGeocentric = "geocentric"
	// KindPure is the ocean tide alone, as seen by a tide gauge.
	KindPure = "pure"
)

// Evaluator evaluates the tide of one open session.
type Evaluator interface {
	Evaluate(lat, lon float64, t time.Time) (engine.Result, error)
	TideType() domain.TideType
	Waves() []*domain.Constituent
	Inferred() []*domain.Constituent
}

// PredictionRequest encapsulates a tide prediction request
type PredictionRequest struct {
	Lat *float64
	Lon *float64

	// Time range
	Start time.Time
	End   time.Time

	// Interval for predictions (e.g., 10 minutes)
	Interval time.Duration

	// Kind is KindGeocentric or KindPure. Empty means geocentric when a
	// radial session is available.
	Kind string
}

// PredictionResponse contains the tide prediction results
type PredictionResponse struct {
	Source       string            `json:"source"`
	Kind         string            `json:"kind"`
	Unit         string            `json:"unit"`
	Timezone     string            `json:"timezone"`
	Constituents []string          `json:"constituents"`
	Inferred     []string          `json:"inferred"`
	Predictions  []PredictionPoint `json:"predictions"`
	Extrema      ExtremaResponse   `json:"extrema"`
	Degraded     bool              `json:"degraded"`
	Meta         map[string]string `json:"meta"`
}

// PredictionPoint represents a single tide height prediction
type PredictionPoint struct {
	Time   string  `json:"time"`
	Height float64 `json:"height"`
}

// ExtremaResponse contains high and low tides
type ExtremaResponse struct {
	Highs []PredictionPoint `json:"highs"`
	Lows  []PredictionPoint `json:"lows"`
}

// PredictionUseCase orchestrates tide prediction
type PredictionUseCase struct {
	ocean  Evaluator
	radial Evaluator // May be nil.
	unit   string
}

// NewPredictionUseCase creates a new prediction use case. radial may be nil,
// in which case only pure predictions are available.
func NewPredictionUseCase(ocean, radial Evaluator, unit string) *PredictionUseCase {
	return &PredictionUseCase{
		ocean:  ocean,
		radial: radial,
		unit:   unit,
	}
}

// Validate checks if the request is valid
func (r *PredictionRequest) Validate() error {
	if r.Lat == nil || r.Lon == nil {
		return fmt.Errorf("lat and lon must be provided")
	}

	// Longitudes wrap, latitudes do not.
	if !(*r.Lat >= -90 && *r.Lat <= 90) {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if math.IsNaN(*r.Lon) || math.IsInf(*r.Lon, 0) {
		return fmt.Errorf("longitude must be a finite number")
	}

	switch r.Kind {
	case "", KindGeocentric, KindPure:
	default:
		return fmt.Errorf("unknown kind %q (expected %s or %s)", r.Kind, KindGeocentric, KindPure)
	}

	// Validate time range
	if !r.Start.Before(r.End) {
		return fmt.Errorf("start time must be before end time")
	}

	// Validate interval
	if r.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1 minute")
	}
	if r.Interval > 6*time.Hour {
		return fmt.Errorf("interval must be at most 6 hours")
	}

	// Check that time range is reasonable
	duration := r.End.Sub(r.Start)
	if duration > 366*24*time.Hour {
		return fmt.Errorf("time range must be at most 366 days")
	}

	// Check that number of points is reasonable
	numPoints := int(duration / r.Interval)
	if numPoints > 10000 {
		return fmt.Errorf("too many prediction points (%d) - reduce time range or increase interval", numPoints)
	}

	return nil
}

// Execute performs the tide prediction
func (uc *PredictionUseCase) Execute(req PredictionRequest) (*PredictionResponse, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid request: %w", domain.ErrInvalidArgument, err)
	}

	kind := req.Kind
	if kind == "" {
		kind = KindPure
		if uc.radial != nil {
			kind = KindGeocentric
		}
	}
	if kind == KindGeocentric && uc.radial == nil {
		return nil, fmt.Errorf("%w: geocentric tide needs a radial loading model", domain.ErrConfig)
	}

	lat, lon := *req.Lat, *req.Lon
	degraded := false
	height := func(t time.Time) (float64, error) {
		h, missing, err := uc.height(kind, lat, lon, t)
		if err != nil {
			return 0, err
		}
		degraded = degraded || missing > 0
		return h, nil
	}

	// Generate predictions
	predictions, err := domain.GeneratePredictions(req.Start, req.End, req.Interval, height)
	if err != nil {
		return nil, fmt.Errorf("failed to predict at (%.4f, %.4f): %w", lat, lon, err)
	}

	// Find extrema and refine them with parabolic interpolation
	extrema := domain.FindExtrema(predictions)
	extrema = domain.RefineExtrema(predictions, extrema)

	response := &PredictionResponse{
		Source:       "fes",
		Kind:         kind,
		Unit:         uc.unit,
		Timezone:     "+00:00", // UTC
		Constituents: names(uc.ocean.Waves()),
		Inferred:     names(uc.ocean.Inferred()),
		Predictions:  toPoints(predictions),
		Extrema: ExtremaResponse{
			Highs: toPoints(extrema.Highs),
			Lows:  toPoints(extrema.Lows),
		},
		Degraded: degraded,
		Meta: map[string]string{
			"model":       "fes_harmonic",
			"attribution": "FES2014/2022 tidal model",
		},
	}
	return response, nil
}

// height returns the requested tide and the largest number of waves
// missing at the point among the sessions used.
func (uc *PredictionUseCase) height(kind string, lat, lon float64, t time.Time) (float64, int, error) {
	ocean, err := uc.ocean.Evaluate(lat, lon, t)
	metrics.ObserveEvaluation(domain.Ocean.String(), ocean.Missing, err)
	if err != nil {
		return 0, 0, err
	}
	h, missing := ocean.Tide+ocean.LongPeriod, ocean.Missing

	if kind == KindGeocentric {
		load, err := uc.radial.Evaluate(lat, lon, t)
		metrics.ObserveEvaluation(domain.Radial.String(), load.Missing, err)
		if err != nil {
			return 0, 0, err
		}
		h += load.Tide + load.LongPeriod
		missing = max(missing, load.Missing)
	}
	return h, missing, nil
}

// ConstituentInfo describes one catalog wave.
type ConstituentInfo struct {
	Name          string  `json:"name"`
	Doodson       string  `json:"doodson"`
	Species       int     `json:"species"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	Gridded       bool    `json:"gridded"`
	Inferred      bool    `json:"inferred"`
}

// GetAllConstituents returns the catalog, marking the waves the ocean
// session grids or infers.
func (uc *PredictionUseCase) GetAllConstituents() []ConstituentInfo {
	gridded := set(uc.ocean.Waves())
	inferred := set(uc.ocean.Inferred())

	all := domain.All()
	out := make([]ConstituentInfo, len(all))
	for i := range all {
		c := &all[i]
		out[i] = ConstituentInfo{
			Name:          c.Name,
			Doodson:       c.DoodsonNumber(),
			Species:       c.Species(),
			SpeedDegPerHr: roundToDecimal(c.SpeedDegPerHr(), 7),
			Gridded:       gridded[c.Name],
			Inferred:      inferred[c.Name],
		}
	}
	return out
}

// IsClientError reports whether err comes from a bad request.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidArgument)
}

func toPoints(levels []domain.TideLevel) []PredictionPoint {
	points := make([]PredictionPoint, len(levels))
	for i, l := range levels {
		points[i] = PredictionPoint{
			Time:   l.Time.UTC().Format(time.RFC3339),
			Height: roundToDecimal(l.Height, 3),
		}
	}
	return points
}

func names(waves []*domain.Constituent) []string {
	out := make([]string, len(waves))
	for i, w := range waves {
		out[i] = w.Name
	}
	return out
}

func set(waves []*domain.Constituent) map[string]bool {
	out := make(map[string]bool, len(waves))
	for _, w := range waves {
		out[w.Name] = true
	}
	return out
}

// Helper function to round to decimal places
func roundToDecimal(val float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Round(val*multiplier) / multiplier
}
