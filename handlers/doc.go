// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the dispatch API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - DeviceHandler: device registration and lookup
  - TelemetryHandler: automation event ingest and queries
  - EnforcementHandler: per-device policy and allow/block decisions
  - DeploymentHandler: deploy directive records from the CLI
  - StatusHandler: service status with humanized counts

Handlers are created via constructor functions that accept *sql.DB and Config:

	telemetryHandler := handlers.NewTelemetryHandler(db, cfg)

# Device Flow

Phones register once and keep their derived key:

	POST /devices/register → Register (X-Device-UUID header, returns device_key)
	GET /devices/me        → GetMe

Authenticated device operations require X-Device-UUID plus X-Device-Key;
keys are recomputed from the salt, never stored.

# Telemetry Flow

MacroDroid macros post events and the laptop queries them:

	POST /telemetry → PostEvent (device-key auth)
	GET /telemetry  → ListEvents (?device= ?kind= ?since= ?limit=)

# Enforcement Flow

	PUT /devices/{uuid}/policy   → PutPolicy (device-key auth)
	GET /devices/{uuid}/decision → GetDecision (?app= ?at=)

Decision order: disabled policy allows, blocked app denies, quiet hours
deny, otherwise allow. The phone falls back to local management on any
non-200, so the endpoint reserves non-200 for real server errors.

# Deployment Flow

The deploy CLI resolves an invocation into a directive and reports it:

	POST /deployments        → Report
	GET /deployments         → List (?environment= ?limit=)
	GET /deployments/latest  → Latest
*/
package handlers
