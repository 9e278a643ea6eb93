package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)

	for _, username := range []string{"alice", "bob", "Ünïcødé", "with space"} {
		token, err := issuer.Issue(username)
		require.NoError(t, err)

		subject, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, username, subject)
	}
}

func TestTokenWithoutTTLHasNoExpiry(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, "alice", claims.Subject)
}

func TestTokenExpired(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	issued := time.Now()
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	require.NoError(t, err, "token should be valid before expiry")

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejected(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)

	other, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff", 0)
	require.NoError(t, err)
	foreign, err := other.Issue("alice")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"no subject", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenIssuerWeakSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", 0)
	assert.ErrorIs(t, err, ErrWeakSecret)
}
