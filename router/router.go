// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/dispatch/cliparse"
	"github.com/danielhkuo/dispatch/handlers"
	"github.com/danielhkuo/dispatch/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	deviceHandler := handlers.NewDeviceHandler(db, cfg)
	telemetryHandler := handlers.NewTelemetryHandler(db, cfg)
	enforcementHandler := handlers.NewEnforcementHandler(db, cfg)
	deploymentHandler := handlers.NewDeploymentHandler(db, cfg)
	statusHandler := handlers.NewStatusHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Service status
	mux.HandleFunc("GET /status", middleware.WithLogging(statusHandler.Get))

	// Device management
	mux.HandleFunc("POST /devices/register", middleware.WithLogging(deviceHandler.Register))
	mux.HandleFunc("GET /devices/me", middleware.WithLogging(deviceHandler.GetMe))

	// Enforcement (policy writes are device-key guarded; decisions are
	// polled by macros and stay open)
	mux.HandleFunc("PUT /devices/{uuid}/policy", middleware.WithLogging(enforcementHandler.PutPolicy))
	mux.HandleFunc("GET /devices/{uuid}/decision", middleware.WithLogging(enforcementHandler.GetDecision))

	// Telemetry ingest and queries
	mux.HandleFunc("POST /telemetry", middleware.WithLogging(telemetryHandler.PostEvent))
	mux.HandleFunc("GET /telemetry", middleware.WithLogging(telemetryHandler.ListEvents))

	// Deploy directive records
	mux.HandleFunc("POST /deployments", middleware.WithLogging(deploymentHandler.Report))
	mux.HandleFunc("GET /deployments", middleware.WithLogging(deploymentHandler.List))
	mux.HandleFunc("GET /deployments/latest", middleware.WithLogging(deploymentHandler.Latest))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("dispatch API v1"))
	})

	return mux
}
