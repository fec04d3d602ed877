// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/dispatch/cliparse"
	"github.com/danielhkuo/dispatch/middleware"
	"github.com/danielhkuo/dispatch/models"
)

type EnforcementHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewEnforcementHandler(db *sql.DB, cfg cliparse.Config) *EnforcementHandler {
	return &EnforcementHandler{db: db, cfg: cfg}
}

// PutPolicy handles PUT /devices/{uuid}/policy
// Upserts the enforcement policy for a device. Requires the device key.
func (h *EnforcementHandler) PutPolicy(w http.ResponseWriter, r *http.Request) {
	pathUUID := r.PathValue("uuid")
	if r.Header.Get("X-Device-UUID") != pathUUID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Device UUID mismatch")
		return
	}

	deviceID := authenticateDevice(w, r, h.db, h.cfg.DeviceKeySalt)
	if deviceID == "" {
		return
	}

	var req models.PolicyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Quiet hours must come as a pair of HH:MM strings, or not at all
	if (req.QuietStart == "") != (req.QuietEnd == "") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "quiet_start and quiet_end must be set together")
		return
	}
	if req.QuietStart != "" {
		if _, err := time.Parse("15:04", req.QuietStart); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "quiet_start must be HH:MM")
			return
		}
		if _, err := time.Parse("15:04", req.QuietEnd); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "quiet_end must be HH:MM")
			return
		}
	}

	blocked := strings.Join(req.BlockedApps, ",")

	_, err := h.db.Exec(`
		INSERT INTO policy (device_id, blocked_apps, quiet_start, quiet_end, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE SET
			blocked_apps = $2,
			quiet_start = $3,
			quiet_end = $4,
			enabled = $5,
			updated_at = $6
	`, deviceID, blocked, req.QuietStart, req.QuietEnd, req.Enabled, time.Now())

	if err != nil {
		slog.Error("failed to upsert policy", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save policy")
		return
	}

	slog.Info("policy updated", "device_id", deviceID, "enabled", req.Enabled, "blocked_apps", len(req.BlockedApps))

	middleware.JSONResponse(w, http.StatusOK, models.Policy{
		DeviceID:    deviceID,
		BlockedApps: req.BlockedApps,
		QuietStart:  req.QuietStart,
		QuietEnd:    req.QuietEnd,
		Enabled:     req.Enabled,
		UpdatedAt:   time.Now(),
	})
}

// GetDecision handles GET /devices/{uuid}/decision?app=X&at=RFC3339
//
// Phone macros treat any non-200 as "server unreachable, fall back to
// local management", so this endpoint only returns non-200 for genuine
// server errors. Unknown devices and missing policies get the
// default-allow decision.
func (h *EnforcementHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	deviceUUID := r.PathValue("uuid")
	app := r.URL.Query().Get("app")

	at := time.Now()
	if ats := r.URL.Query().Get("at"); ats != "" {
		parsed, err := time.Parse(time.RFC3339, ats)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}

	var blocked, quietStart, quietEnd string
	var enabled bool
	err := h.db.QueryRow(`
		SELECT p.blocked_apps, p.quiet_start, p.quiet_end, p.enabled
		FROM policy p
		JOIN device d ON d.id = p.device_id
		WHERE d.device_uuid = $1
	`, deviceUUID).Scan(&blocked, &quietStart, &quietEnd, &enabled)

	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, models.Decision{Allow: true, Reason: "no policy"})
		return
	}
	if err != nil {
		slog.Error("failed to query policy", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	decision := decide(blocked, quietStart, quietEnd, enabled, app, at)
	middleware.JSONResponse(w, http.StatusOK, decision)
}

// decide applies the enforcement rules in order: disabled policy,
// app blocklist, quiet hours.
func decide(blocked, quietStart, quietEnd string, enabled bool, app string, at time.Time) models.Decision {
	if !enabled {
		return models.Decision{Allow: true, Reason: "policy disabled"}
	}

	if app != "" && blocked != "" {
		for _, b := range strings.Split(blocked, ",") {
			if b == app {
				return models.Decision{Allow: false, Reason: "app blocked: " + app}
			}
		}
	}

	if quietStart != "" && quietEnd != "" && inQuietWindow(quietStart, quietEnd, at) {
		return models.Decision{Allow: false, Reason: "quiet hours " + quietStart + "-" + quietEnd}
	}

	return models.Decision{Allow: true, Reason: "allowed"}
}

// inQuietWindow reports whether at falls inside [start, end) by local
// minute of day. A window where end <= start wraps past midnight
// (22:30-06:00 covers late evening and early morning).
func inQuietWindow(start, end string, at time.Time) bool {
	s := minuteOfDay(start)
	e := minuteOfDay(end)
	m := at.Hour()*60 + at.Minute()

	if s == e {
		return false
	}
	if s < e {
		return m >= s && m < e
	}
	return m >= s || m < e
}

func minuteOfDay(hhmm string) int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}
