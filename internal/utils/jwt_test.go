package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "marketplace", 1)
	userID := "u-1"
	role := "ADMIN"

	tokenString, err := jwtUtil.GenerateToken(userID, role)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, role, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "marketplace", 1)
	userID := "u-1"
	role := "ADMIN"

	tokenString, _ := jwtUtil.GenerateToken(userID, role)

	claims, err := jwtUtil.ValidateToken(tokenString)

	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, role, claims.Role)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "marketplace", 1)

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "marketplace", -1) // Token expires in the past
	userID := "u-1"
	role := "ADMIN"

	tokenString, _ := jwtUtil.GenerateToken(userID, role)

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", "marketplace", 1)
	jwtUtil2 := NewJWTUtil("secret2", "marketplace", 1)
	userID := "u-1"
	role := "ADMIN"

	tokenString, _ := jwtUtil1.GenerateToken(userID, role)

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "marketplace", 1)
	claims := &JWTClaims{
		UserID: "u-1",
		Role:   "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "marketplace",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
} 

func TestJWTUtil_ValidateToken_WrongIssuer(t *testing.T) {
	tokenString, _ := NewJWTUtil("secret", "someone-else", 1).GenerateToken("u-1", "USER")

	_, err := NewJWTUtil("secret", "marketplace", 1).ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTUtil_GenerateToken_Subject(t *testing.T) {
	ju := NewJWTUtil("secret", "marketplace", 1)
	tokenString, err := ju.GenerateToken("u-9", "SUPERADMIN")
	assert.NoError(t, err)

	claims, err := ju.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "u-9", claims.Subject)
	assert.Equal(t, "marketplace", claims.Issuer)
}
