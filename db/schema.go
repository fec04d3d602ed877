// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the dialect intersection of sqlite and postgres:
// no NOW() defaults (timestamps are bound explicitly by the handlers),
// no JSONB (payloads are TEXT).
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Registered phones and other automation clients
CREATE TABLE IF NOT EXISTS device (
    id TEXT PRIMARY KEY,
    device_uuid TEXT NOT NULL UNIQUE,
    platform TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    last_seen_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_device_uuid ON device(device_uuid);

-- Append-only automation telemetry
CREATE TABLE IF NOT EXISTS telemetry_event (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES device(id) ON DELETE CASCADE,
    kind TEXT NOT NULL,
    payload TEXT,
    source_ip_hash TEXT,
    recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_telemetry_device_time ON telemetry_event(device_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_telemetry_kind ON telemetry_event(kind);

-- One enforcement policy per device
CREATE TABLE IF NOT EXISTS policy (
    device_id TEXT PRIMARY KEY REFERENCES device(id) ON DELETE CASCADE,
    blocked_apps TEXT NOT NULL DEFAULT '',
    quiet_start TEXT NOT NULL DEFAULT '',
    quiet_end TEXT NOT NULL DEFAULT '',
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP NOT NULL
);

-- Deploy directives reported by the CLI
CREATE TABLE IF NOT EXISTS deployment (
    id TEXT PRIMARY KEY,
    target TEXT NOT NULL DEFAULT '',
    environment TEXT NOT NULL,
    flag TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('started', 'succeeded', 'failed')),
    host TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deployment_created ON deployment(created_at);
CREATE INDEX IF NOT EXISTS idx_deployment_environment ON deployment(environment);
`
