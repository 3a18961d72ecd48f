package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/fieldsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := setupTestJWTService(t, 24)
	technicianID := uuid.New()

	token, err := service.GenerateToken(technicianID, "Alex")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, technicianID, claims.TechnicianID)
	assert.Equal(t, technicianID, claims.GetTechnicianID())
	assert.Equal(t, "Alex", claims.Name)
	assert.Equal(t, "fieldsync", claims.Issuer)
	assert.Equal(t, technicianID.String(), claims.Subject)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp.Time, time.Minute)
}

func TestJWTService_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_InvalidSignature(t *testing.T) {
	token, err := setupTestJWTService(t, 1).GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: strings.Repeat("x", 32), ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_Rejects(t *testing.T) {
	service := setupTestJWTService(t, 1)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		TechnicianID:     uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		TechnicianID:     uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noTechnician, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"none algorithm", noneToken},
		{"wrong issuer", wrongIssuer},
		{"missing technician", noTechnician},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 1)
	id := uuid.New()
	token, err := service.GenerateToken(id, "")
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got.GetTechnicianID())

	_, err = service.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}
