// Package testutils provides deterministic generators and utility functions for Seminar testing.
// These utilities ensure consistent test output while maintaining production format compatibility.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"seminar/pkg/seminartypes"

	"github.com/google/uuid"
)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex

	// Thread-safe counter for deterministic timestamp generation
	timeCounter int64
	timeMutex   sync.Mutex
)

// GenerateUUID generates a UUID that is deterministic in test mode but random in production.
// In test mode, returns UUIDs in format: 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, etc.
// In production mode, returns standard random UUIDs.
func GenerateUUID(mode seminartypes.TestModeProvider) string {
	if mode.IsTestMode() {
		return getDeterministicUUID()
	}
	return uuid.New().String()
}

// GetCurrentTime returns the current time, deterministic in test mode but real in production.
// In test mode, returns incrementing time starting from 2025-01-01T00:00:00Z.
// In production mode, returns time.Now().
func GetCurrentTime(mode seminartypes.TestModeProvider) time.Time {
	if mode.IsTestMode() {
		// Deterministic but incrementing, so transcript ordering stays sortable
		return getDeterministicTime()
	}
	return time.Now()
}

// getDeterministicUUID generates a deterministic UUID maintaining UUID v4 format.
// Returns UUIDs like: 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002
func getDeterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++

	// Format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
	// Where 4 indicates version 4, and y is 8, 9, a, or b (we use 8 for simplicity)
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// getDeterministicTime generates incrementing deterministic timestamps for test mode.
// Each call returns a time that is 1 second later than the previous call.
func getDeterministicTime() time.Time {
	timeMutex.Lock()
	defer timeMutex.Unlock()

	timeCounter++

	baseTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return baseTime.Add(time.Duration(timeCounter) * time.Second)
}

// ResetTestCounters resets the deterministic counters for testing.
// This should only be called from test code to ensure consistent test runs.
func ResetTestCounters() {
	idMutex.Lock()
	timeMutex.Lock()
	defer idMutex.Unlock()
	defer timeMutex.Unlock()

	idCounter = 0
	timeCounter = 0
}

// TestMode is a trivial TestModeProvider for tests and for wiring the CLI
// flag through to the generators.
type TestMode bool

// IsTestMode reports whether deterministic test mode is active.
func (t TestMode) IsTestMode() bool { return bool(t) }
