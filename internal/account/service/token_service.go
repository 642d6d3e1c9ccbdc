package service

//go:generate mockgen -destination=../../../mocks/mock_token_generator.go -package=mocks github.com/IslamMhareeq/sha-256/internal/account/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const PurposePasswordReset = "password_reset"

type TokenGenerator interface {
	IssueSession(username string, role domain.Role) (string, time.Time, error)
	IssueReset(username string) (string, time.Time, error)
	VerifySession(tokenString string) (*SessionClaims, error)
	VerifyReset(tokenString string) (*ResetClaims, error)
	GetSessionTokenExpiry() time.Duration
}

type SessionClaims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type ResetClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
}

// ResetTicket is the verified content of a reset token.
type ResetTicket struct {
	Username  string
	Purpose   string
	ExpiresAt time.Time
}

// IsValid reports whether the ticket authorises a password change at now.
// A ticket is still valid at exactly ExpiresAt.
func (t ResetTicket) IsValid(now time.Time) bool {
	return t.Username != "" &&
		t.Purpose == PurposePasswordReset &&
		!now.After(t.ExpiresAt)
}

func (c *ResetClaims) Ticket() ResetTicket {
	t := ResetTicket{Username: c.Username, Purpose: c.Purpose}
	if c.ExpiresAt != nil {
		t.ExpiresAt = c.ExpiresAt.Time
	}
	return t
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		ts.now = now
	}
}

type TokenService struct {
	Secret             string
	SessionTokenExpiry time.Duration
	ResetTokenExpiry   time.Duration

	now func() time.Time
}

func NewTokenService(secret string, sessionExpiry, resetExpiry time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	if sessionExpiry <= 0 || resetExpiry <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	ts := &TokenService{
		Secret:             secret,
		SessionTokenExpiry: sessionExpiry,
		ResetTokenExpiry:   resetExpiry,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

func (ts *TokenService) GetSessionTokenExpiry() time.Duration {
	return ts.SessionTokenExpiry
}

func (ts *TokenService) IssueSession(username string, role domain.Role) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.SessionTokenExpiry)

	claims := SessionClaims{
		Username:         username,
		Role:             role,
		RegisteredClaims: ts.registered(now, expiresAt),
	}

	signed, err := ts.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) IssueReset(username string) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.ResetTokenExpiry)

	claims := ResetClaims{
		Username:         username,
		Purpose:          PurposePasswordReset,
		RegisteredClaims: ts.registered(now, expiresAt),
	}

	signed, err := ts.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifySession validates a bearer token and returns its claims. Tokens that
// carry no recognised role, such as reset tokens, are rejected as malformed.
func (ts *TokenService) VerifySession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Username == "" || !claims.Role.Valid() {
		return nil, autherror.ErrTokenMalformed
	}
	return claims, nil
}

// VerifyReset validates a reset token. Session tokens fail with ErrTokenWrongPurpose.
func (ts *TokenService) VerifyReset(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposePasswordReset {
		return nil, autherror.ErrTokenWrongPurpose
	}
	if !claims.Ticket().IsValid(ts.now()) {
		return nil, autherror.ErrTokenExpired
	}
	return claims, nil
}

func (ts *TokenService) registered(now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (ts *TokenService) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (ts *TokenService) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return autherror.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)

	switch {
	case err == nil && token.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return autherror.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return autherror.ErrTokenSignatureInvalid
	default:
		return autherror.ErrTokenMalformed
	}
}
