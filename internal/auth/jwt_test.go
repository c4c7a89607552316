package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()

	token, err := svc.Generate(userID, "ana@example.com", "talent")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "talent", claims.Role)
	assert.Equal(t, "castlane", claims.Issuer)
}

func TestJWTService_Validate_Rejections(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewJWTService("other-secret", 24)
				tok, err := other.Generate(userID, "a@b.com", "talent")
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := NewJWTService("test-secret", -1)
				tok, err := expired.Generate(userID, "a@b.com", "talent")
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				claims := Claims{
					UserID: userID,
					Email:  "a@b.com",
					Role:   "talent",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "unexpected signing method",
			token: func(t *testing.T) string {
				claims := Claims{
					UserID: userID,
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "castlane",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Validate(tt.token(t))
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_Identity(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()

	token, err := svc.Generate(userID, "studio@example.com", "studio")
	require.NoError(t, err)

	gotID, email, role, err := svc.Identity(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "studio@example.com", email)
	assert.Equal(t, "studio", role)

	_, _, _, err = svc.Identity("bad")
	assert.Error(t, err)
}
