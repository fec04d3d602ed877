// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDeviceKey = errors.New("invalid device key")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateDeviceKey creates an HMAC-based key for a device UUID.
// Deterministic and verifiable, so the server never stores keys:
// a phone presents its key and the server recomputes it from the salt.
func GenerateDeviceKey(deviceUUID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(deviceUUID))
	sum := h.Sum(nil)
	// URL-safe base64 without padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateDeviceKey checks the presented key against the device UUID
func ValidateDeviceKey(deviceUUID, deviceKey, salt string) error {
	expected := GenerateDeviceKey(deviceUUID, salt)
	if !hmac.Equal([]byte(deviceKey), []byte(expected)) {
		return ErrInvalidDeviceKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy.
// Telemetry rows record where an event came from without keeping the
// raw address around.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
