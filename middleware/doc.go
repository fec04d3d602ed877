// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

# Request Logging

WithLogging wraps a handler and logs start/completion with duration via
slog:

	mux.HandleFunc("POST /telemetry", middleware.WithLogging(h.PostEvent))

# JSON Helpers

JSONResponse and ErrorResponse write consistent JSON bodies;
ParseJSONBody decodes request bodies:

	var req models.TelemetryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP

GetClientIP resolves the caller's address through X-Forwarded-For and
X-Real-IP before falling back to RemoteAddr. Telemetry handlers hash
this (auth.HashIP) instead of storing it raw.

There is no CORS layer: the API is consumed by phone macros and the
deploy CLI, not by browsers.
*/
package middleware
