package providers

import (
	"github.com/samber/do/v2"

	"github.com/elewand/elewand-server/internal/auth"
	"github.com/elewand/elewand-server/internal/config"
	"github.com/elewand/elewand-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the authentication key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration)
}

// ProvideGoogleVerifier provides the Google id_token verifier.
// Without a client id it reports itself disabled and sign-in returns 503.
func ProvideGoogleVerifier(i do.Injector) (*auth.GoogleVerifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	verifier := auth.NewGoogleVerifier(auth.GoogleVerifierConfig{ClientID: cfg.Auth.GoogleClientID})
	if !verifier.Enabled() {
		log.Info("Google sign-in disabled, GOOGLE_CLIENT_ID not set")
	}
	return verifier, nil
}
