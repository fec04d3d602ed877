// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and device key derivation.

# Device Keys

Device keys are HMAC-SHA256 over the device UUID with a server-side salt:

	key := auth.GenerateDeviceKey(deviceUUID, cfg.DeviceKeySalt)

The server never stores keys. Registration returns the derived key to the
phone, and every authenticated request is validated by recomputing:

	err := auth.ValidateDeviceKey(deviceUUID, presentedKey, cfg.DeviceKeySalt)

Rotating the salt invalidates every key at once, which is the intended
lost-phone recovery story.

# IDs

GenerateID returns a random hex string and is used for device row IDs.
Telemetry events and deployment records use UUIDs (see handlers).

# IP Hashing

HashIP produces a salted 64-bit hash so telemetry can be deduplicated per
source without storing raw addresses.
*/
package auth
