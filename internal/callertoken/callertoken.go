// Package callertoken issues and validates the bearer tokens that identify the
// principal calling the credential API. The token subject is the caller's
// ledger address.
package callertoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/middleware/requesttime"
)

const (
	DefaultIssuer   = "credverify"
	DefaultAudience = "credverify-api"
)

// Claims are the caller token claims. Subject carries the caller address.
type Claims struct {
	Env string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 caller tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
	env        string
}

func New(signingKey string, tokenTTL time.Duration) (*Service, error) {
	if signingKey == "" {
		return nil, errors.New("caller signing key is required")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("caller token ttl must be positive")
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     DefaultIssuer,
		audience:   DefaultAudience,
		tokenTTL:   tokenTTL,
	}, nil
}

// SetEnv annotates issued tokens with an environment string (e.g. "dev").
func (s *Service) SetEnv(env string) {
	s.env = env
}

// Mint issues a token whose subject is caller.
func (s *Service) Mint(ctx context.Context, caller domain.Address) (string, error) {
	if caller.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller address is required")
	}
	now := requesttime.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Env: s.env,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses tokenString and checks signature, algorithm, expiry,
// issuer and audience.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	return claims, nil
}

// VerifyCaller satisfies caller.TokenVerifier.
func (s *Service) VerifyCaller(token string) (string, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
