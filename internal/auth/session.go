// Package auth supplies the minimal session gate consumed by the
// orchestrator: whether a user session is active, and who the user is.
package auth

import (
	"fmt"
	"strings"
	"time"

	"seminar/internal/logger"
	"seminar/internal/testutils"
	"seminar/pkg/seminartypes"
)

// DefaultSessionTTL is how long a session stays valid without renewal.
const DefaultSessionTTL = 24 * time.Hour

// SessionService tracks the single local user session.
type SessionService struct {
	initialized bool
	testMode    seminartypes.TestModeProvider
	ttl         time.Duration

	userID    string
	startedAt time.Time
}

// NewSessionService creates a session service with the default TTL.
func NewSessionService(testMode seminartypes.TestModeProvider) *SessionService {
	return &SessionService{
		testMode: testMode,
		ttl:      DefaultSessionTTL,
	}
}

// Name returns the service name "session" for registration.
func (s *SessionService) Name() string {
	return "session"
}

// Initialize sets up the SessionService for operation.
func (s *SessionService) Initialize() error {
	s.initialized = true
	return nil
}

// SetTTL overrides the session lifetime.
func (s *SessionService) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Login starts a session for the given user id.
func (s *SessionService) Login(userID string) error {
	if !s.initialized {
		return fmt.Errorf("session service not initialized")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	s.userID = userID
	s.startedAt = testutils.GetCurrentTime(s.testMode)
	logger.Debug("Session started", "user_id", userID)
	return nil
}

// Logout ends the current session.
func (s *SessionService) Logout() {
	if s.userID != "" {
		logger.Debug("Session ended", "user_id", s.userID)
	}
	s.userID = ""
	s.startedAt = time.Time{}
}

// IsActive reports whether a non-expired session exists.
func (s *SessionService) IsActive() bool {
	if s.userID == "" {
		return false
	}
	return testutils.GetCurrentTime(s.testMode).Sub(s.startedAt) < s.ttl
}

// CurrentUserID returns the logged-in user id, or "" without a session.
func (s *SessionService) CurrentUserID() string {
	if !s.IsActive() {
		return ""
	}
	return s.userID
}
