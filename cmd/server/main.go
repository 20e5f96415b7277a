// Package main provides the tides API HTTP server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/config"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/engine"
	httpHandler "github.com/oceanscan/pulvis-fes-api/internal/http"
	"github.com/oceanscan/pulvis-fes-api/internal/usecase"
)

const version = "0.2.0"

// Config is read from the environment.
type Config struct {
	Port               string   `default:"8080"`
	FESConfig          string   `envconfig:"FES_CONFIG" default:"./data/fes/fes.yaml"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	// Radial enables geocentric predictions when the settings list radial waves.
	Radial bool `default:"true"`
	Debug  bool `default:"false"`
}

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("pulvis-fes-api version %s\n", version)
		return
	}

	var env Config
	if err := envconfig.Process("", &env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(env.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(env, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(env Config, logger *zap.Logger) (err error) {
	logger.Info("starting tide API server",
		zap.String("version", version),
		zap.String("port", env.Port),
		zap.String("settings", env.FESConfig),
	)

	settings, err := config.Load(env.FESConfig)
	if err != nil {
		return err
	}
	mode, err := settings.Mode()
	if err != nil {
		return err
	}

	ocean, err := engine.Open(domain.Ocean, mode, settings, engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open ocean tide: %w", err)
	}
	defer func() { err = errors.Join(err, ocean.Close()) }()

	// Loading is optional: without it only pure predictions are served.
	var radial usecase.Evaluator
	if env.Radial && len(settings.Radial) > 0 {
		h, openErr := engine.Open(domain.Radial, mode, settings, engine.WithLogger(logger))
		if openErr != nil {
			return fmt.Errorf("failed to open radial tide: %w", openErr)
		}
		defer func() { err = errors.Join(err, h.Close()) }()
		radial = h
	} else {
		logger.Info("radial loading disabled, serving pure tide only")
	}

	predictionUC := usecase.NewPredictionUseCase(ocean, radial, settings.Unit)
	router := httpHandler.SetupRouter(predictionUC, env.CORSAllowedOrigins)

	srv := &http.Server{
		Handler:      router,
		Addr:         ":" + env.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Info("server listening",
		zap.String("addr", srv.Addr),
		zap.Strings("endpoints", []string{"/health", "/metrics", "/v1/constituents", "/v1/tides/predictions"}),
	)
	return srv.ListenAndServe()
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Tides API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  FES_CONFIG              FES settings file (default: ./data/fes/fes.yaml)")
	fmt.Println("  RADIAL                  Open the radial loading model if configured (default: true)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  DEBUG                   Development logging (default: false)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /metrics                   Prometheus metrics")
	fmt.Println("  GET /v1/constituents           List tidal constituents")
	fmt.Println("  GET /v1/tides/predictions      Get tide predictions")
	fmt.Println()
}
