// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the dispatch server.

Dispatch is the home-base half of a set of personal automation shims: it
collects telemetry from phone macros (MacroDroid), answers their
enforcement questions (may this app run right now?), and records the
deploy directives produced by the companion deploy CLI (cmd/deploy).

# Starting the Server

The server takes configuration from a .env file, environment variables,
or CLI flags:

	DEVICE_KEY_SALT=... go run .

Or with flags:

	go run . -p 3319 -t sqlite -d dispatch.db

# Configuration

Required settings:

  - DEVICE_KEY_SALT (--device-salt): Secret for device key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): sqlite path (default: dispatch.db) or postgres URL

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (devices, telemetry, enforcement, deployments, status)
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, JSON helpers
  - models: Request/response types
  - auth: ID generation and device key derivation
  - db: Schema creation
  - cliparse: Server configuration parsing
  - directive: deploy invocation resolver shared with cmd/deploy

See package documentation for each component.
*/
package main
