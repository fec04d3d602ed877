// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/dispatch/auth"
	"github.com/danielhkuo/dispatch/cliparse"
	"github.com/danielhkuo/dispatch/middleware"
	"github.com/danielhkuo/dispatch/models"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

type TelemetryHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTelemetryHandler(db *sql.DB, cfg cliparse.Config) *TelemetryHandler {
	return &TelemetryHandler{db: db, cfg: cfg}
}

// PostEvent handles POST /telemetry
// Appends an event for the authenticated device. Phones post battery,
// screen, and app-launch events from their macros.
func (h *TelemetryHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	deviceID := authenticateDevice(w, r, h.db, h.cfg.DeviceKeySalt)
	if deviceID == "" {
		return
	}

	var req models.TelemetryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Kind == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind is required")
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	var payload *string
	if len(req.Payload) > 0 {
		s := string(req.Payload)
		payload = &s
	}

	eventID := uuid.NewString()
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.DeviceKeySalt)

	_, err := h.db.Exec(`
		INSERT INTO telemetry_event (id, device_id, kind, payload, source_ip_hash, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, eventID, deviceID, req.Kind, payload, ipHash, recordedAt)

	if err != nil {
		slog.Error("failed to insert telemetry event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record event")
		return
	}

	// Telemetry doubles as a liveness signal
	if _, err := h.db.Exec(`UPDATE device SET last_seen_at = $1 WHERE id = $2`, time.Now(), deviceID); err != nil {
		slog.Error("failed to update device last_seen_at", "error", err)
	}

	slog.Info("telemetry event recorded", "event_id", eventID, "device_id", deviceID, "kind", req.Kind)

	middleware.JSONResponse(w, http.StatusCreated, models.TelemetryResponse{EventID: eventID})
}

// ListEvents handles GET /telemetry
// Supports ?device=<uuid>, ?kind=, ?since=<RFC3339>, ?limit=
func (h *TelemetryHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := `
		SELECT e.id, e.device_id, e.kind, e.payload, e.recorded_at
		FROM telemetry_event e`
	var conds []string
	var args []interface{}

	if device := q.Get("device"); device != "" {
		args = append(args, device)
		query += ` JOIN device d ON d.id = e.device_id`
		conds = append(conds, `d.device_uuid = $`+strconv.Itoa(len(args)))
	}
	if kind := q.Get("kind"); kind != "" {
		args = append(args, kind)
		conds = append(conds, `e.kind = $`+strconv.Itoa(len(args)))
	}
	if since := q.Get("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		args = append(args, ts)
		conds = append(conds, `e.recorded_at >= $`+strconv.Itoa(len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}

	limit := defaultEventLimit
	if ls := q.Get("limit"); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxEventLimit {
			n = maxEventLimit
		}
		limit = n
	}
	args = append(args, limit)
	query += ` ORDER BY e.recorded_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query telemetry events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	events := []models.TelemetryEvent{}
	for rows.Next() {
		var ev models.TelemetryEvent
		var payload sql.NullString
		if err := rows.Scan(&ev.ID, &ev.DeviceID, &ev.Kind, &payload, &ev.RecordedAt); err != nil {
			slog.Error("failed to scan telemetry event", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if payload.Valid {
			ev.Payload = json.RawMessage(payload.String)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate telemetry events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}
