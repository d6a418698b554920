package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seminar/internal/testutils"
)

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	testutils.ResetTestCounters()
	s := NewSessionService(testutils.TestMode(true))
	require.NoError(t, s.Initialize())
	return s
}

func TestSessionService_LoginLogout(t *testing.T) {
	s := newTestSessionService(t)

	assert.False(t, s.IsActive())
	assert.Empty(t, s.CurrentUserID())

	require.NoError(t, s.Login("user-1"))
	assert.True(t, s.IsActive())
	assert.Equal(t, "user-1", s.CurrentUserID())

	s.Logout()
	assert.False(t, s.IsActive())
	assert.Empty(t, s.CurrentUserID())
}

func TestSessionService_RejectsEmptyUserID(t *testing.T) {
	s := newTestSessionService(t)
	assert.Error(t, s.Login("   "))
	assert.False(t, s.IsActive())
}

func TestSessionService_RequiresInitialize(t *testing.T) {
	s := NewSessionService(testutils.TestMode(true))
	assert.Error(t, s.Login("user-1"))
}

func TestSessionService_Expiry(t *testing.T) {
	s := newTestSessionService(t)
	s.SetTTL(time.Second)

	require.NoError(t, s.Login("user-1"))

	// deterministic clock advances one second per read; the second check
	// lands past the TTL
	assert.False(t, s.IsActive())
}
