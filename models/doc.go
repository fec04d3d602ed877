// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
dispatch API.

# Request/Response Types

Each endpoint has a matching pair, e.g.:

	RegisterDeviceRequest  → RegisterDeviceResponse
	TelemetryRequest       → TelemetryResponse
	ReportDeploymentRequest → ReportDeploymentResponse

# Domain Types

DeviceInfo, TelemetryEvent, Policy, and Deployment mirror database rows
and are what list endpoints return.

Deployment carries the four directive fields (target, environment, flag,
mode) exactly as the deploy CLI resolved them, plus the reported status
and origin host. The flag field is the overloaded short-form slot from
the legacy invocation syntax; it is stored verbatim.

# Errors

All handlers use ErrorResponse for non-2xx replies.
*/
package models
