package callertoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/middleware/requesttime"
)

const signingKey = "test-signing-key"

func newService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := New(signingKey, ttl)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	_, err := New("", time.Minute)
	require.Error(t, err)
	_, err = New(signingKey, 0)
	require.Error(t, err)
}

func TestMintAndVerify(t *testing.T) {
	svc := newService(t, time.Hour)
	svc.SetEnv("dev")

	token, err := svc.Mint(context.Background(), "ADMIN")
	require.NoError(t, err)

	sub, err := svc.VerifyCaller(token)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", sub)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "dev", claims.Env)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestMint_RequiresCaller(t *testing.T) {
	svc := newService(t, time.Hour)
	_, err := svc.Mint(context.Background(), domain.Address(""))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidate_Expired(t *testing.T) {
	svc := newService(t, time.Minute)
	past := requesttime.WithTime(context.Background(), time.Now().Add(-time.Hour))
	token, err := svc.Mint(past, "ADMIN")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := newService(t, time.Hour).Mint(context.Background(), "ADMIN")
	require.NoError(t, err)

	other, err := New("another-key", time.Hour)
	require.NoError(t, err)
	_, err = other.VerifyCaller(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_RejectsAlgorithmConfusion(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "ADMIN",
		Issuer:    DefaultIssuer,
		Audience:  []string{DefaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService(t, time.Hour).Validate(token)
	assert.ErrorContains(t, err, "invalid token")
}

func TestValidate_WrongAudience(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "ADMIN",
		Issuer:    DefaultIssuer,
		Audience:  []string{"someone-else"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)

	_, err = newService(t, time.Hour).Validate(token)
	assert.ErrorContains(t, err, "invalid token")
}

func TestValidate_Garbage(t *testing.T) {
	svc := newService(t, time.Hour)
	_, err := svc.Validate("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = svc.Validate("not-a-jwt")
	assert.ErrorContains(t, err, "invalid token")
}
