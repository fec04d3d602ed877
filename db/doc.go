// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema.

# Tables

  - device: registered phones/automation clients, keyed by a random ID
    with a unique client-chosen device_uuid
  - telemetry_event: append-only events (battery, screen, app launches)
    posted by MacroDroid macros
  - policy: one enforcement policy per device (app blocklist, quiet hours)
  - deployment: deploy directives reported by the deploy CLI

# Dialects

The same DDL runs on both supported drivers (modernc.org/sqlite and
lib/pq). Timestamps are always bound from Go code rather than defaulted
in SQL, and placeholders use the $1 style both drivers accept.

# Usage

	if err := db.CreateSchema(conn); err != nil {
		...
	}

CreateSchema is idempotent; the server calls it on every start.
*/
package db
