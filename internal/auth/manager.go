package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Manager signs and validates the tokens issued by the edge auth endpoints.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// AccessTokenTTL is the lifetime of issued access tokens, exposed so the
// auth endpoints can report expiresIn.
func (m *Manager) AccessTokenTTL() time.Duration {
	return accessTokenTTL
}

// IssueToken signs an access token for the given user id.
func (m *Manager) IssueToken(userID string) (string, error) {
	return m.sign(userID, "access", accessTokenTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the given user id.
func (m *Manager) IssueRefreshToken(userID string) (string, error) {
	return m.sign(userID, "refresh", refreshTokenTTL)
}

func (m *Manager) sign(userID, use string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"use": use,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken checks an access token and returns the user id it was
// issued for.
func (m *Manager) ValidateToken(tokenString string) (string, error) {
	return m.validate(tokenString, "access")
}

// ValidateRefreshToken checks a refresh token and returns the user id.
func (m *Manager) ValidateRefreshToken(tokenString string) (string, error) {
	return m.validate(tokenString, "refresh")
}

func (m *Manager) validate(tokenString, use string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if u, _ := claims["use"].(string); u != use {
		return "", fmt.Errorf("token is not a %s token", use)
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("invalid token subject")
	}
	return sub, nil
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password against its stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
