package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
)

// Claims is the token payload carried by both access and refresh tokens.
type Claims struct {
	Email string         `json:"email"`
	Role  constants.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access and refresh tokens. Access and
// refresh tokens use separate secrets so one cannot stand in for the
// other.
type TokenManager struct {
	secret        []byte
	refreshSecret []byte
	ttl           time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a TokenManager from auth configuration.
func NewTokenManager(cfg common.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:        []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		ttl:           cfg.TokenTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// Generate returns a signed access token for the given user.
func (m *TokenManager) Generate(userID string, email string, role constants.Role) (string, error) {
	return m.sign(userID, email, role, m.secret, m.ttl)
}

// GenerateRefresh returns a signed refresh token for the given user.
func (m *TokenManager) GenerateRefresh(userID string, email string, role constants.Role) (string, error) {
	return m.sign(userID, email, role, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) sign(userID, email string, role constants.Role, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify parses and validates an access token.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	return m.verify(tokenString, m.secret)
}

// VerifyRefresh parses and validates a refresh token.
func (m *TokenManager) VerifyRefresh(tokenString string) (*Claims, error) {
	return m.verify(tokenString, m.refreshSecret)
}

func (m *TokenManager) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewAppError("BAD_TOKEN", "unexpected signing method", common.ErrUnauthorized)
		}
		return secret, nil
	})
	if err != nil {
		return nil, common.NewAppError("BAD_TOKEN", "invalid or expired token", common.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, common.NewAppError("BAD_TOKEN", "invalid token claims", common.ErrUnauthorized)
	}
	return claims, nil
}
