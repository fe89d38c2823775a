package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123.apps.googleusercontent.com"

type jwksFixture struct {
	key     *rsa.PrivateKey
	server  *httptest.Server
	fetches atomic.Int32
}

func newJWKSFixture(t *testing.T) *jwksFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &jwksFixture{key: key}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "kid-1",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *jwksFixture) sign(t *testing.T, claims jwt.MapClaims, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "1234567890",
		"email":          "reader@example.com",
		"email_verified": true,
		"name":           "Avid Reader",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestGoogleVerifier_Valid(t *testing.T) {
	f := newJWKSFixture(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{ClientID: testClientID, CertsURL: f.server.URL})

	identity, err := v.Verify(context.Background(), f.sign(t, validClaims(), "kid-1"))
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", identity.Email)
	assert.Equal(t, "Avid Reader", identity.Name)
	assert.Equal(t, "1234567890", identity.Subject)

	// Second verification is served from the key cache.
	_, err = v.Verify(context.Background(), f.sign(t, validClaims(), "kid-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.fetches.Load())
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	f := newJWKSFixture(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{ClientID: testClientID, CertsURL: f.server.URL})

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
		kid    string
		want   error
	}{
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "someone-else" }, "kid-1", ErrInvalidGoogleToken},
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }, "kid-1", ErrInvalidGoogleToken},
		{"expired", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }, "kid-1", ErrInvalidGoogleToken},
		{"unknown kid", func(jwt.MapClaims) {}, "kid-9", ErrInvalidGoogleToken},
		{"no email", func(c jwt.MapClaims) { delete(c, "email") }, "kid-1", ErrGoogleEmailMissing},
		{"unverified email", func(c jwt.MapClaims) { c["email_verified"] = false }, "kid-1", ErrGoogleEmailUnverified},
		{"email_verified absent", func(c jwt.MapClaims) { delete(c, "email_verified") }, "kid-1", ErrGoogleEmailUnverified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)
			_, err := v.Verify(context.Background(), f.sign(t, claims, tt.kid))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGoogleVerifier_RejectsHS256(t *testing.T) {
	f := newJWKSFixture(t)
	v := NewGoogleVerifier(GoogleVerifierConfig{ClientID: testClientID, CertsURL: f.server.URL})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = "kid-1"
	signed, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
}

func TestGoogleVerifier_Disabled(t *testing.T) {
	v := NewGoogleVerifier(GoogleVerifierConfig{})
	assert.False(t, v.Enabled())

	_, err := v.Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}
