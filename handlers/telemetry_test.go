// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/dispatch/auth"
	"github.com/danielhkuo/dispatch/models"
	"github.com/danielhkuo/dispatch/testutil"
)

func TestPostEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewTelemetryHandler(db, cfg)

	deviceID, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")

	req := testutil.MakeRequest("POST", "/telemetry",
		models.TelemetryRequest{Kind: "battery", Payload: json.RawMessage(`{"pct":41}`)},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": deviceKey})
	w := httptest.NewRecorder()
	h.PostEvent(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.TelemetryResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.EventID == "" {
		t.Fatal("expected an event ID")
	}

	var gotDevice, gotKind, gotPayload string
	err := db.QueryRow(`
		SELECT device_id, kind, payload FROM telemetry_event WHERE id = $1
	`, resp.EventID).Scan(&gotDevice, &gotKind, &gotPayload)
	if err != nil {
		t.Fatalf("event not stored: %v", err)
	}
	if gotDevice != deviceID || gotKind != "battery" {
		t.Errorf("stored event = (%q, %q)", gotDevice, gotKind)
	}
	if gotPayload != `{"pct":41}` {
		t.Errorf("payload = %q", gotPayload)
	}
}

func TestPostEvent_Auth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewTelemetryHandler(db, cfg)

	_, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")

	// Wrong key
	req := testutil.MakeRequest("POST", "/telemetry",
		models.TelemetryRequest{Kind: "battery"},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": "bogus"})
	w := httptest.NewRecorder()
	h.PostEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// Missing UUID header
	req = testutil.MakeRequest("POST", "/telemetry",
		models.TelemetryRequest{Kind: "battery"},
		map[string]string{"X-Device-Key": deviceKey})
	w = httptest.NewRecorder()
	h.PostEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Valid key for a device that never registered
	ghostKey := auth.GenerateDeviceKey("ghost", cfg.DeviceKeySalt)
	req = testutil.MakeRequest("POST", "/telemetry",
		models.TelemetryRequest{Kind: "battery"},
		map[string]string{"X-Device-UUID": "ghost", "X-Device-Key": ghostKey})
	w = httptest.NewRecorder()
	h.PostEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestPostEvent_KindRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewTelemetryHandler(db, cfg)

	_, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")

	req := testutil.MakeRequest("POST", "/telemetry",
		models.TelemetryRequest{},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": deviceKey})
	w := httptest.NewRecorder()
	h.PostEvent(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestListEvents_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewTelemetryHandler(db, cfg)

	phoneID, _ := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")
	tabletID, _ := testutil.RegisterTestDevice(t, db, cfg, "tab-s9", "android")

	now := time.Now()
	testutil.InsertTestEvent(t, db, phoneID, "battery", now.Add(-2*time.Hour))
	testutil.InsertTestEvent(t, db, phoneID, "app_launch", now.Add(-1*time.Hour))
	testutil.InsertTestEvent(t, db, tabletID, "battery", now.Add(-30*time.Minute))

	tests := []struct {
		name  string
		path  string
		count int
	}{
		{"all events", "/telemetry", 3},
		{"by device", "/telemetry?device=pixel-7-daniel", 2},
		{"by kind", "/telemetry?kind=battery", 2},
		{"by device and kind", "/telemetry?device=pixel-7-daniel&kind=battery", 1},
		{"since cutoff", "/telemetry?since=" + now.Add(-90*time.Minute).Format(time.RFC3339), 2},
		{"limit", "/telemetry?limit=1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", tt.path, nil, nil)
			w := httptest.NewRecorder()
			h.ListEvents(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var events []models.TelemetryEvent
			testutil.AssertJSON(t, w, &events)
			if len(events) != tt.count {
				t.Errorf("got %d events, want %d", len(events), tt.count)
			}
		})
	}
}

func TestListEvents_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewTelemetryHandler(db, cfg)

	phoneID, _ := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")

	now := time.Now()
	oldID := testutil.InsertTestEvent(t, db, phoneID, "battery", now.Add(-time.Hour))
	newID := testutil.InsertTestEvent(t, db, phoneID, "battery", now)

	req := testutil.MakeRequest("GET", "/telemetry", nil, nil)
	w := httptest.NewRecorder()
	h.ListEvents(w, req)

	var events []models.TelemetryEvent
	testutil.AssertJSON(t, w, &events)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != newID || events[1].ID != oldID {
		t.Error("events not ordered newest first")
	}
}

func TestListEvents_BadParams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewTelemetryHandler(db, testutil.GetTestConfig())

	for _, path := range []string{
		"/telemetry?since=yesterday",
		"/telemetry?limit=0",
		"/telemetry?limit=nope",
	} {
		req := testutil.MakeRequest("GET", path, nil, nil)
		w := httptest.NewRecorder()
		h.ListEvents(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}
