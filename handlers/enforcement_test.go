// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/dispatch/models"
	"github.com/danielhkuo/dispatch/testutil"
)

func TestPutPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewEnforcementHandler(db, cfg)

	deviceID, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")

	req := testutil.MakeRequest("PUT", "/devices/pixel-7-daniel/policy",
		models.PolicyRequest{
			BlockedApps: []string{"com.reddit.frontpage", "com.zhiliaoapp.musically"},
			QuietStart:  "22:30",
			QuietEnd:    "06:00",
			Enabled:     true,
		},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": deviceKey})
	req.SetPathValue("uuid", "pixel-7-daniel")
	w := httptest.NewRecorder()
	h.PutPolicy(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var blocked, start, end string
	var enabled bool
	err := db.QueryRow(`
		SELECT blocked_apps, quiet_start, quiet_end, enabled FROM policy WHERE device_id = $1
	`, deviceID).Scan(&blocked, &start, &end, &enabled)
	if err != nil {
		t.Fatalf("policy not stored: %v", err)
	}
	if blocked != "com.reddit.frontpage,com.zhiliaoapp.musically" {
		t.Errorf("blocked_apps = %q", blocked)
	}
	if start != "22:30" || end != "06:00" || !enabled {
		t.Errorf("policy = (%q, %q, %v)", start, end, enabled)
	}
}

func TestPutPolicy_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewEnforcementHandler(db, cfg)

	deviceID, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")
	testutil.InsertTestPolicy(t, db, deviceID, "com.old.app", "21:00", "07:00", true)

	req := testutil.MakeRequest("PUT", "/devices/pixel-7-daniel/policy",
		models.PolicyRequest{BlockedApps: []string{"com.new.app"}, Enabled: false},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": deviceKey})
	req.SetPathValue("uuid", "pixel-7-daniel")
	w := httptest.NewRecorder()
	h.PutPolicy(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM policy WHERE device_id = $1`, deviceID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 policy row after upsert, got %d", count)
	}

	var blocked string
	var enabled bool
	if err := db.QueryRow(`SELECT blocked_apps, enabled FROM policy WHERE device_id = $1`, deviceID).Scan(&blocked, &enabled); err != nil {
		t.Fatal(err)
	}
	if blocked != "com.new.app" || enabled {
		t.Errorf("policy not replaced: (%q, %v)", blocked, enabled)
	}
}

func TestPutPolicy_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewEnforcementHandler(db, cfg)

	_, deviceKey := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")
	headers := map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": deviceKey}

	// Quiet start without end
	req := testutil.MakeRequest("PUT", "/devices/pixel-7-daniel/policy",
		models.PolicyRequest{QuietStart: "22:00", Enabled: true}, headers)
	req.SetPathValue("uuid", "pixel-7-daniel")
	w := httptest.NewRecorder()
	h.PutPolicy(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Not HH:MM
	req = testutil.MakeRequest("PUT", "/devices/pixel-7-daniel/policy",
		models.PolicyRequest{QuietStart: "10pm", QuietEnd: "6am", Enabled: true}, headers)
	req.SetPathValue("uuid", "pixel-7-daniel")
	w = httptest.NewRecorder()
	h.PutPolicy(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Path/header mismatch
	req = testutil.MakeRequest("PUT", "/devices/tab-s9/policy",
		models.PolicyRequest{Enabled: true}, headers)
	req.SetPathValue("uuid", "tab-s9")
	w = httptest.NewRecorder()
	h.PutPolicy(w, req)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// Wrong key
	req = testutil.MakeRequest("PUT", "/devices/pixel-7-daniel/policy",
		models.PolicyRequest{Enabled: true},
		map[string]string{"X-Device-UUID": "pixel-7-daniel", "X-Device-Key": "bogus"})
	req.SetPathValue("uuid", "pixel-7-daniel")
	w = httptest.NewRecorder()
	h.PutPolicy(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestGetDecision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewEnforcementHandler(db, cfg)

	deviceID, _ := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")
	testutil.InsertTestPolicy(t, db, deviceID, "com.reddit.frontpage", "22:30", "06:00", true)

	// Daytime reference point, outside quiet hours
	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)

	tests := []struct {
		name  string
		query string
		allow bool
	}{
		{"blocked app", "?app=com.reddit.frontpage&at=" + noon, false},
		{"allowed app", "?app=com.spotify.music&at=" + noon, true},
		{"no app, daytime", "?at=" + noon, true},
		{"quiet hours late evening", "?at=" + time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC).Format(time.RFC3339), false},
		{"quiet hours early morning (window wraps midnight)", "?at=" + time.Date(2025, 6, 1, 5, 30, 0, 0, time.UTC).Format(time.RFC3339), false},
		{"just after quiet hours", "?at=" + time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC).Format(time.RFC3339), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/devices/pixel-7-daniel/decision"+tt.query, nil, nil)
			req.SetPathValue("uuid", "pixel-7-daniel")
			w := httptest.NewRecorder()
			h.GetDecision(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var d models.Decision
			testutil.AssertJSON(t, w, &d)
			if d.Allow != tt.allow {
				t.Errorf("Allow = %v (%s), want %v", d.Allow, d.Reason, tt.allow)
			}
		})
	}
}

func TestGetDecision_DefaultAllow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewEnforcementHandler(db, cfg)

	// Unknown device still gets a 200 allow: phones treat non-200 as
	// "fall back to local management"
	req := testutil.MakeRequest("GET", "/devices/never-seen/decision?app=com.reddit.frontpage", nil, nil)
	req.SetPathValue("uuid", "never-seen")
	w := httptest.NewRecorder()
	h.GetDecision(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var d models.Decision
	testutil.AssertJSON(t, w, &d)
	if !d.Allow {
		t.Errorf("unknown device should default-allow, got %+v", d)
	}

	// Disabled policy also allows everything
	deviceID, _ := testutil.RegisterTestDevice(t, db, cfg, "pixel-7-daniel", "android")
	testutil.InsertTestPolicy(t, db, deviceID, "com.reddit.frontpage", "", "", false)

	req = testutil.MakeRequest("GET", "/devices/pixel-7-daniel/decision?app=com.reddit.frontpage", nil, nil)
	req.SetPathValue("uuid", "pixel-7-daniel")
	w = httptest.NewRecorder()
	h.GetDecision(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &d)
	if !d.Allow {
		t.Errorf("disabled policy should allow, got %+v", d)
	}
}

func TestInQuietWindow(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		start, end string
		t          time.Time
		want       bool
	}{
		{"09:00", "17:00", at(12, 0), true},
		{"09:00", "17:00", at(8, 59), false},
		{"09:00", "17:00", at(17, 0), false}, // end is exclusive
		{"22:30", "06:00", at(23, 45), true},
		{"22:30", "06:00", at(2, 0), true},
		{"22:30", "06:00", at(12, 0), false},
		{"22:30", "06:00", at(22, 30), true}, // start is inclusive
		{"08:00", "08:00", at(8, 0), false},  // empty window
	}

	for _, tt := range tests {
		if got := inQuietWindow(tt.start, tt.end, tt.t); got != tt.want {
			t.Errorf("inQuietWindow(%s, %s, %s) = %v, want %v",
				tt.start, tt.end, tt.t.Format("15:04"), got, tt.want)
		}
	}
}
