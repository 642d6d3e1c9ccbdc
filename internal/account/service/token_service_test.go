package service

import (
	"strings"
	"testing"
	"time"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

// fakeClock is a settable time source for token issuance and verification.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour, 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return ts
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		secret      string
		session     time.Duration
		reset       time.Duration
		expectError bool
	}{
		{name: "valid parameters", secret: "secret", session: time.Hour, reset: 15 * time.Minute},
		{name: "empty secret", secret: "", session: time.Hour, reset: 15 * time.Minute, expectError: true},
		{name: "zero session lifetime", secret: "secret", session: 0, reset: 15 * time.Minute, expectError: true},
		{name: "negative reset lifetime", secret: "secret", session: time.Hour, reset: -time.Minute, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTokenService(tt.secret, tt.session, tt.reset)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, ts)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.secret, ts.Secret)
			assert.Equal(t, tt.session, ts.GetSessionTokenExpiry())
			assert.Equal(t, tt.reset, ts.ResetTokenExpiry)
		})
	}
}

func TestTokenService_Session(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	ts := newTestTokenService(t, clock)

	token, expiresAt, err := ts.IssueSession("alice", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(time.Hour), expiresAt)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ts.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	t.Run("expired", func(t *testing.T) {
		clock.now = expiresAt.Add(time.Second)
		defer func() { clock.now = expiresAt.Add(-time.Hour) }()

		_, err := ts.VerifySession(token)
		assert.ErrorIs(t, err, autherror.ErrTokenExpired)
	})

	t.Run("reset token is not a session", func(t *testing.T) {
		reset, _, err := ts.IssueReset("alice")
		require.NoError(t, err)

		_, err = ts.VerifySession(reset)
		assert.ErrorIs(t, err, autherror.ErrTokenMalformed)
	})
}

func TestTokenService_Reset(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	ts := newTestTokenService(t, clock)

	token, expiresAt, err := ts.IssueReset("bob")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(15*time.Minute), expiresAt)

	tests := []struct {
		name        string
		at          time.Time
		expectedErr error
	}{
		{name: "immediately", at: issuedAt},
		{name: "just before expiry", at: issuedAt.Add(14*time.Minute + 59*time.Second)},
		{name: "after expiry", at: issuedAt.Add(15*time.Minute + time.Second), expectedErr: autherror.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = tt.at
			claims, err := ts.VerifyReset(token)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bob", claims.Username)
			assert.Equal(t, PurposePasswordReset, claims.Purpose)
		})
	}

	t.Run("session token has the wrong purpose", func(t *testing.T) {
		clock.now = issuedAt
		session, _, err := ts.IssueSession("bob", domain.RoleUser)
		require.NoError(t, err)

		_, err = ts.VerifyReset(session)
		assert.ErrorIs(t, err, autherror.ErrTokenWrongPurpose)
	})
}

func TestTokenService_RejectsForgedTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now().Truncate(time.Second)}
	ts := newTestTokenService(t, clock)

	other, err := NewTokenService("another-secret", time.Hour, 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)

	valid, _, err := ts.IssueSession("alice", domain.RoleUser)
	require.NoError(t, err)
	elevated, _, err := ts.IssueSession("alice", domain.RoleAdmin)
	require.NoError(t, err)
	foreign, _, err := other.IssueSession("alice", domain.RoleAdmin)
	require.NoError(t, err)

	// Swap the payload of a user token for the admin one while keeping the
	// original signature.
	validParts := strings.Split(valid, ".")
	elevatedParts := strings.Split(elevated, ".")
	spliced := strings.Join([]string{validParts[0], elevatedParts[1], validParts[2]}, ".")

	claims := SessionClaims{
		Username: "mallory",
		Role:     domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Username: "mallory",
		Role:     domain.RoleAdmin,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{name: "empty", token: "", expectedErr: autherror.ErrTokenMalformed},
		{name: "garbage", token: "not-a-token", expectedErr: autherror.ErrTokenMalformed},
		{name: "tampered payload", token: spliced, expectedErr: autherror.ErrTokenSignatureInvalid},
		{name: "signed with another secret", token: foreign, expectedErr: autherror.ErrTokenSignatureInvalid},
		{name: "alg none", token: unsigned, expectedErr: autherror.ErrTokenSignatureInvalid},
		{name: "unexpected algorithm", token: hs512, expectedErr: autherror.ErrTokenSignatureInvalid},
		{name: "missing expiry", token: noExpiry, expectedErr: autherror.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ts.VerifySession(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.True(t, autherror.IsTokenError(err))
		})
	}
}

func TestResetTicket_IsValid(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	ticket := ResetTicket{Username: "bob", Purpose: PurposePasswordReset, ExpiresAt: expiry}

	assert.True(t, ticket.IsValid(expiry.Add(-time.Minute)))
	assert.True(t, ticket.IsValid(expiry))
	assert.False(t, ticket.IsValid(expiry.Add(time.Nanosecond)))

	wrongPurpose := ticket
	wrongPurpose.Purpose = "login"
	assert.False(t, wrongPurpose.IsValid(expiry.Add(-time.Minute)))

	anonymous := ticket
	anonymous.Username = ""
	assert.False(t, anonymous.IsValid(expiry.Add(-time.Minute)))
}

func TestResetClaims_Ticket(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	claims := &ResetClaims{
		Username:         "bob",
		Purpose:          PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiry)},
	}

	assert.Equal(t, ResetTicket{Username: "bob", Purpose: PurposePasswordReset, ExpiresAt: expiry}, claims.Ticket())
	assert.True(t, (&ResetClaims{Username: "bob"}).Ticket().ExpiresAt.IsZero())
}
