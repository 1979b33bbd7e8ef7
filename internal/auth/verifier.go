// AngelaMos | 2026
// verifier.go

package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
)

// Principal is the identity asserted by the identity provider.
type Principal struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Username  string
}

// Verifier checks identity provider tokens against either a remote JWKS or
// a single static public key.
type Verifier struct {
	keyOption jwt.ParseOption
	config    config.IdentityConfig
}

func NewVerifier(ctx context.Context, cfg config.IdentityConfig) (*Verifier, error) {
	if cfg.JWKSURL != "" {
		return NewRemoteVerifier(ctx, cfg)
	}

	pemBytes, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read identity public key: %w", err)
	}

	return NewStaticVerifier(pemBytes, cfg)
}

func NewRemoteVerifier(ctx context.Context, cfg config.IdentityConfig) (*Verifier, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("create jwks cache: %w", err)
	}

	if err := cache.Register(ctx, cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("register jwks %s: %w", cfg.JWKSURL, err)
	}

	keys, err := cache.CachedSet(cfg.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("cached jwks: %w", err)
	}

	return &Verifier{
		keyOption: jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true)),
		config:    cfg,
	}, nil
}

func NewStaticVerifier(pemBytes []byte, cfg config.IdentityConfig) (*Verifier, error) {
	key, err := jwk.ParseKey(pemBytes, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}

	alg, err := algorithmFor(key)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		keyOption: jwt.WithKey(alg, key),
		config:    cfg,
	}, nil
}

func algorithmFor(key jwk.Key) (jwa.SignatureAlgorithm, error) {
	switch key.(type) {
	case jwk.ECDSAPublicKey:
		return jwa.ES256(), nil
	case jwk.RSAPublicKey:
		return jwa.RS256(), nil
	default:
		var none jwa.SignatureAlgorithm
		return none, fmt.Errorf("unsupported identity key type %T", key)
	}
}

func (v *Verifier) Verify(_ context.Context, tokenString string) (*Principal, error) {
	opts := []jwt.ParseOption{
		v.keyOption,
		jwt.WithValidate(true),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithAcceptableSkew(v.config.ClockSkew),
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	email := strings.ToLower(strings.TrimSpace(stringClaim(token, "email")))
	if email == "" {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &Principal{
		Subject:   subject,
		Email:     email,
		FirstName: stringClaim(token, "given_name"),
		LastName:  stringClaim(token, "family_name"),
		Username:  stringClaim(token, "preferred_username"),
	}, nil
}

func stringClaim(token jwt.Token, name string) string {
	var v string
	if err := token.Get(name, &v); err != nil {
		return ""
	}
	return v
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		(strings.Contains(errStr, "not satisfied") || strings.Contains(errStr, "expired"))
}
