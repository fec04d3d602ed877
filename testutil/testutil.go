// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/dispatch/auth"
	"github.com/danielhkuo/dispatch/cliparse"
	schema "github.com/danielhkuo/dispatch/db"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database; no cleanup between tests is
// needed.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)

	if err := schema.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3319,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		DeviceKeySalt: "test-device-salt",
	}
}

// RegisterTestDevice inserts a device row and returns its ID and
// derived device key
func RegisterTestDevice(t *testing.T, db *sql.DB, cfg cliparse.Config, deviceUUID, platform string) (deviceID, deviceKey string) {
	t.Helper()

	deviceID, _ = auth.GenerateID(16)
	deviceKey = auth.GenerateDeviceKey(deviceUUID, cfg.DeviceKeySalt)

	now := time.Now()
	_, err := db.Exec(`
		INSERT INTO device (id, device_uuid, platform, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`, deviceID, deviceUUID, platform, now, now)
	if err != nil {
		t.Fatalf("Failed to create test device: %v", err)
	}

	return deviceID, deviceKey
}

// InsertTestEvent inserts a telemetry event and returns its ID
func InsertTestEvent(t *testing.T, db *sql.DB, deviceID, kind string, recordedAt time.Time) string {
	t.Helper()

	eventID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO telemetry_event (id, device_id, kind, payload, source_ip_hash, recorded_at)
		VALUES ($1, $2, $3, NULL, NULL, $4)
	`, eventID, deviceID, kind, recordedAt)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID
}

// InsertTestPolicy inserts a policy row for a device
func InsertTestPolicy(t *testing.T, db *sql.DB, deviceID, blockedApps, quietStart, quietEnd string, enabled bool) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO policy (device_id, blocked_apps, quiet_start, quiet_end, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, deviceID, blockedApps, quietStart, quietEnd, enabled, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test policy: %v", err)
	}
}

// InsertTestDeployment inserts a deployment record and returns its ID
func InsertTestDeployment(t *testing.T, db *sql.DB, target, environment, status string, createdAt time.Time) string {
	t.Helper()

	deploymentID := uuid.NewString()
	flag := ""
	switch target {
	case "local":
		flag = "-l"
	case "debug":
		flag = "-d"
	}
	_, err := db.Exec(`
		INSERT INTO deployment (id, target, environment, flag, mode, status, host, created_at)
		VALUES ($1, $2, $3, $4, 'async', $5, 'testhost', $6)
	`, deploymentID, target, environment, flag, status, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test deployment: %v", err)
	}

	return deploymentID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
