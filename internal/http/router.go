package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oceanscan/pulvis-fes-api/internal/metrics"
	"github.com/oceanscan/pulvis-fes-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router. An empty
// allowedOrigins list allows every origin.
func SetupRouter(predictionUC *usecase.PredictionUseCase, allowedOrigins []string) *gin.Engine {

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(predictionUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Tide predictions.
	tides := v1.Group("/tides")
	tides.GET("/predictions", handler.GetPredictions)

	// Constituents.
	v1.GET("/constituents", handler.GetConstituentsList)

	// Health check and metrics.
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}
