package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies JWT tokens. Overridden from the
// JWT_SECRET environment variable at startup.
var jwtSecretKey = []byte("solemate-dev-signing-key")

const (
	AccessTokenTTL  = 12 * time.Hour     // A store stays signed in for a working day
	RefreshTokenTTL = 7 * 24 * time.Hour // Refresh token lives for 7 days
)

// Actor roles carried in token claims.
const (
	RoleStore = "store"
	RoleHub   = "hub"
)

// SetJWTSecret replaces the signing key. Call once during startup.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// Claims defines the JWT claims structure. StoreID is empty for hub tokens.
type Claims struct {
	StoreID   string `json:"store_id,omitempty"`
	StoreName string `json:"store_name,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a new JWT access token for a resolved actor.
func GenerateAccessToken(storeID, storeName, role string) (string, error) {
	expirationTime := time.Now().Add(AccessTokenTTL)
	claims := &Claims{
		StoreID:   storeID,
		StoreName: storeName,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "solemate-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken creates a longer-lived token used only to mint a new
// access token.
func GenerateRefreshToken(storeID, role string) (string, error) {
	expirationTime := time.Now().Add(RefreshTokenTTL)
	claims := &Claims{
		StoreID: storeID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "solemate-backend-refresh",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
