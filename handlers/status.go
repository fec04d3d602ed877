// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/dispatch/middleware"
	"github.com/danielhkuo/dispatch/models"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

type StatusHandler struct {
	db      *sql.DB
	started time.Time
}

func NewStatusHandler(db *sql.DB) *StatusHandler {
	return &StatusHandler{db: db, started: time.Now()}
}

// Get handles GET /status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	var devices, events, deployments int64

	if err := h.db.QueryRow(`SELECT COUNT(*) FROM device`).Scan(&devices); err != nil {
		slog.Error("failed to count devices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM telemetry_event`).Scan(&events); err != nil {
		slog.Error("failed to count telemetry events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM deployment`).Scan(&deployments); err != nil {
		slog.Error("failed to count deployments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Version:     Version,
		Uptime:      humanize.Time(h.started),
		Devices:     devices,
		Events:      events,
		Deployments: deployments,
		Summary: fmt.Sprintf("%s events from %s devices, %s deployments",
			humanize.Comma(events), humanize.Comma(devices), humanize.Comma(deployments)),
	})
}
