// Package uuid generates the identifiers used to correlate requests and
// scheduled generation runs in logs.
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new UUID v4.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether s is a canonical (dashed) UUID v4.
func IsValid(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}

// RequestID returns inbound when it is a valid UUID v4 supplied by the caller
// (e.g. an upstream proxy's X-Request-ID), otherwise a fresh one.
func RequestID(inbound string) string {
	inbound = strings.TrimSpace(inbound)
	if IsValid(inbound) {
		return strings.ToLower(inbound)
	}
	return New()
}
