package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/usecase"
)

// Handler handles HTTP requests for tide predictions.
type Handler struct {
	predictionUC *usecase.PredictionUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(predictionUC *usecase.PredictionUseCase) *Handler {
	return &Handler{
		predictionUC: predictionUC,
	}
}

// GetPredictions handles GET /v1/tides/predictions.
func (h *Handler) GetPredictions(c *gin.Context) {
	// Parse query parameters.
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	startStr := c.Query("start")
	endStr := c.Query("end")
	intervalStr := c.Query("interval")

	// Build request.
	req := usecase.PredictionRequest{
		Kind: c.Query("kind"),
	}

	// Parse lat/lon.
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}
	req.Lat = &lat
	req.Lon = &lon

	// Parse time range.
	if startStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start parameter is required"})
		return
	}
	if endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end parameter is required"})
		return
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start time (expected RFC3339): %v", err)})
		return
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end time (expected RFC3339): %v", err)})
		return
	}

	req.Start = start.UTC()
	req.End = end.UTC()

	// Parse interval (default: 10m).
	if intervalStr == "" {
		intervalStr = "10m"
	}

	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid interval: %v", err)})
		return
	}
	req.Interval = interval

	// Execute use case.
	response, err := h.predictionUC.Execute(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": err.Error(),
			"kind":  domain.KindOf(err).String(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ConstituentListResponse is the response for listing constituents.
type ConstituentListResponse struct {
	usecase.ConstituentInfo
	Description string `json:"description,omitempty"`
}

// GetConstituentsList returns a detailed list of all constituents.
func (h *Handler) GetConstituentsList(c *gin.Context) {
	constituents := h.predictionUC.GetAllConstituents()

	// Add descriptions for major constituents.
	descriptions := map[string]string{
		"M2":  "Principal lunar semidiurnal",
		"S2":  "Principal solar semidiurnal",
		"N2":  "Larger lunar elliptic semidiurnal",
		"K2":  "Lunisolar semidiurnal",
		"K1":  "Lunisolar diurnal",
		"O1":  "Principal lunar diurnal",
		"P1":  "Principal solar diurnal",
		"Q1":  "Larger lunar elliptic diurnal",
		"S1":  "Solar diurnal (radiational)",
		"M4":  "Shallow water overtide of M2",
		"M6":  "Shallow water overtide of M2",
		"MK3": "Shallow water terdiurnal",
		"S4":  "Shallow water overtide of S2",
		"MN4": "Shallow water quarter diurnal",
		"MS4": "Shallow water quarter diurnal",
		"Mf":  "Lunisolar fortnightly",
		"Mm":  "Lunar monthly",
		"MSf": "Lunisolar synodic fortnightly",
		"Mtm": "Lunar termensual",
		"Ssa": "Solar semiannual",
		"Sa":  "Solar annual",
	}

	response := make([]ConstituentListResponse, len(constituents))
	for i, c := range constituents {
		response[i] = ConstituentListResponse{
			ConstituentInfo: c,
			Description:     descriptions[c.Name],
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"constituents": response,
		"count":        len(response),
	})
}

// statusFor maps an engine error to an HTTP status.
func statusFor(err error) int {
	switch {
	case usecase.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfig):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
