// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/dispatch/cliparse"
	"github.com/danielhkuo/dispatch/middleware"
	"github.com/danielhkuo/dispatch/models"
)

const (
	defaultDeploymentLimit = 50
	maxDeploymentLimit     = 500
)

type DeploymentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDeploymentHandler(db *sql.DB, cfg cliparse.Config) *DeploymentHandler {
	return &DeploymentHandler{db: db, cfg: cfg}
}

// Report handles POST /deployments
// Records a resolved deploy directive handed off by the deploy CLI.
func (h *DeploymentHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportDeploymentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Environment == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "environment is required")
		return
	}
	switch req.Mode {
	case "async", "blocking":
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "mode must be async or blocking")
		return
	}
	switch req.Status {
	case models.StatusStarted, models.StatusSucceeded, models.StatusFailed:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: started, succeeded, failed")
		return
	}

	deploymentID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO deployment (id, target, environment, flag, mode, status, host, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, deploymentID, req.Target, req.Environment, req.Flag, req.Mode, req.Status, req.Host, time.Now())

	if err != nil {
		slog.Error("failed to insert deployment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record deployment")
		return
	}

	slog.Info("deployment recorded",
		"deployment_id", deploymentID,
		"target", req.Target,
		"environment", req.Environment,
		"mode", req.Mode,
		"status", req.Status,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.ReportDeploymentResponse{DeploymentID: deploymentID})
}

// List handles GET /deployments
// Supports ?environment= and ?limit=, newest first.
func (h *DeploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultDeploymentLimit
	if ls := q.Get("limit"); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxDeploymentLimit {
			n = maxDeploymentLimit
		}
		limit = n
	}

	var rows *sql.Rows
	var err error
	if env := q.Get("environment"); env != "" {
		rows, err = h.db.Query(`
			SELECT id, target, environment, flag, mode, status, host, created_at
			FROM deployment
			WHERE environment = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, env, limit)
	} else {
		rows, err = h.db.Query(`
			SELECT id, target, environment, flag, mode, status, host, created_at
			FROM deployment
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		slog.Error("failed to query deployments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	deployments := []models.Deployment{}
	for rows.Next() {
		var d models.Deployment
		if err := rows.Scan(&d.ID, &d.Target, &d.Environment, &d.Flag, &d.Mode, &d.Status, &d.Host, &d.CreatedAt); err != nil {
			slog.Error("failed to scan deployment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate deployments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, deployments)
}

// Latest handles GET /deployments/latest
func (h *DeploymentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	var d models.Deployment
	err := h.db.QueryRow(`
		SELECT id, target, environment, flag, mode, status, host, created_at
		FROM deployment
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&d.ID, &d.Target, &d.Environment, &d.Flag, &d.Mode, &d.Status, &d.Host, &d.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No deployments recorded")
		return
	}
	if err != nil {
		slog.Error("failed to query latest deployment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d)
}
