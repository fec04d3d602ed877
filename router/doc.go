// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires API routes to handlers.

# Routes

Uses Go 1.22+ method-and-pattern routing on the standard ServeMux:

	GET  /health
	GET  /status
	POST /devices/register
	GET  /devices/me
	PUT  /devices/{uuid}/policy
	GET  /devices/{uuid}/decision
	POST /telemetry
	GET  /telemetry
	POST /deployments
	GET  /deployments
	GET  /deployments/latest

All routes except /health go through the request-logging middleware.

# Construction

	mux := router.NewRouter(db, cfg)
	server := http.Server{Handler: mux, Addr: ":3319"}
*/
package router
