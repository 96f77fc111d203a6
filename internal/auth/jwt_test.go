package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTService_ParseToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewJWTService("secret", time.Hour)
	issuer.now = func() time.Time { return issued }

	valid, err := issuer.GenerateToken("user-1", "")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		secret string
		now    time.Time
		token  string
	}{
		{name: "wrong secret", secret: "other", now: issued, token: valid},
		{name: "expired", secret: "secret", now: issued.Add(2 * time.Hour), token: valid},
		{name: "garbage", secret: "secret", now: issued, token: "not-a-token"},
		{name: "unsigned", secret: "secret", now: issued, token: noneToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewJWTService(tc.secret, time.Hour)
			svc.now = func() time.Time { return tc.now }

			_, err := svc.ParseToken(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
