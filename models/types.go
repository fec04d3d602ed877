package models

import (
	"encoding/json"
	"time"
)

// Deployment status constants
const (
	StatusStarted   = "started"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Device platform constants
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformOther   = "other"
)

// Request types

type RegisterDeviceRequest struct {
	Platform string `json:"platform"`
}

type TelemetryRequest struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"` // defaults to server time
}

type PolicyRequest struct {
	BlockedApps []string `json:"blocked_apps"`
	QuietStart  string   `json:"quiet_start"` // "HH:MM", empty disables the window
	QuietEnd    string   `json:"quiet_end"`
	Enabled     bool     `json:"enabled"`
}

type ReportDeploymentRequest struct {
	Target      string `json:"target"`
	Environment string `json:"environment"`
	Flag        string `json:"flag"`
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	Host        string `json:"host,omitempty"`
}

// Response types

type RegisterDeviceResponse struct {
	DeviceID  string `json:"device_id"`
	DeviceKey string `json:"device_key"`
	IsNew     bool   `json:"is_new"`
}

type TelemetryResponse struct {
	EventID string `json:"event_id"`
}

type ReportDeploymentResponse struct {
	DeploymentID string `json:"deployment_id"`
}

type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

type StatusResponse struct {
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Devices     int64  `json:"devices"`
	Events      int64  `json:"events"`
	Deployments int64  `json:"deployments"`
	Summary     string `json:"summary"`
}

// Domain types

type DeviceInfo struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type TelemetryEvent struct {
	ID         string          `json:"id"`
	DeviceID   string          `json:"device_id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type Policy struct {
	DeviceID    string    `json:"device_id"`
	BlockedApps []string  `json:"blocked_apps"`
	QuietStart  string    `json:"quiet_start"`
	QuietEnd    string    `json:"quiet_end"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Deployment struct {
	ID          string    `json:"id"`
	Target      string    `json:"target"`
	Environment string    `json:"environment"`
	Flag        string    `json:"flag"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"`
	Host        string    `json:"host,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
