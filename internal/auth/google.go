package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// GoogleCertsURL is Google's published JWKS for id_token signatures.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Google id_token verification errors.
var (
	ErrGoogleDisabled        = errors.New("google sign-in is not configured")
	ErrInvalidGoogleToken    = errors.New("invalid google id_token")
	ErrGoogleEmailMissing    = errors.New("google id_token has no email claim")
	// ErrGoogleEmailUnverified means Google does not vouch for the email owner.
	// Accounts are matched by email, so such tokens are never accepted.
	ErrGoogleEmailUnverified = errors.New("google account email is not verified")
)

// GoogleIdentity is the verified subset of an id_token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// GoogleVerifierConfig configures a GoogleVerifier.
type GoogleVerifierConfig struct {
	ClientID   string
	CertsURL   string
	HTTPClient *http.Client
	KeyTTL     time.Duration
	Leeway     time.Duration
}

// GoogleVerifier verifies RS256 Google id_tokens against the JWKS endpoint.
type GoogleVerifier struct {
	clientID string
	leeway   time.Duration
	keys     *jwksCache
}

// NewGoogleVerifier creates a verifier. An empty ClientID yields a verifier
// that rejects every token with ErrGoogleDisabled.
func NewGoogleVerifier(cfg GoogleVerifierConfig) *GoogleVerifier {
	if cfg.CertsURL == "" {
		cfg.CertsURL = GoogleCertsURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.KeyTTL <= 0 {
		cfg.KeyTTL = time.Hour
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = time.Minute
	}

	return &GoogleVerifier{
		clientID: cfg.ClientID,
		leeway:   cfg.Leeway,
		keys: &jwksCache{
			uri:        cfg.CertsURL,
			httpClient: cfg.HTTPClient,
			ttl:        cfg.KeyTTL,
		},
	}
}

// Enabled reports whether a client id is configured.
func (v *GoogleVerifier) Enabled() bool {
	return v != nil && v.clientID != ""
}

// Verify checks the token signature, issuer, audience, expiry and email_verified
// and returns the identity.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if !v.Enabled() {
		return nil, ErrGoogleDisabled
	}

	var claims googleClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.keys.getKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGoogleToken, err)
	}

	if !validGoogleIssuer(claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidGoogleToken, claims.Issuer)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrGoogleEmailMissing
	}
	if !claims.EmailVerified {
		return nil, ErrGoogleEmailUnverified
	}

	return &GoogleIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

func validGoogleIssuer(iss string) bool {
	for _, want := range googleIssuers {
		if iss == want {
			return true
		}
	}
	return false
}

// jwksCache holds RSA keys by kid, refetching on a miss or after ttl.
type jwksCache struct {
	uri        string
	httpClient *http.Client
	ttl        time.Duration

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

func (c *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	expired := time.Since(c.fetched) > c.ttl
	c.mu.RUnlock()

	if ok && !expired {
		return key, nil
	}

	keys, err := c.refresh(ctx)
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, err
	}

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("signing key %q not found", kid)
	}
	return key, nil
}

type jwkSet struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (c *jwksCache) refresh(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch JWKS: status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.N, "="))
		if err != nil {
			continue
		}
		e, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.E, "="))
		if err != nil {
			continue
		}
		exp := 0
		for _, b := range e {
			exp = exp<<8 | int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: exp}
	}

	c.mu.Lock()
	c.keys = keys
	c.fetched = time.Now()
	c.mu.Unlock()
	return keys, nil
}
