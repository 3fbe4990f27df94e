package utils

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "FoodListingDashboard"

// RoleOperator is the role carried by dashboard operator tokens.
const RoleOperator = "operator"

type CustomClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and checks operator tokens. Revoked tokens stay on the
// blacklist until they would have expired anyway.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	mu          sync.RWMutex
	blacklisted map[string]time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret:      []byte(secret),
		ttl:         ttl,
		blacklisted: make(map[string]time.Time),
	}
}

func (m *TokenManager) GenerateToken(username, role string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if m.IsBlacklisted(tokenString) {
		return nil, errors.New("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (m *TokenManager) Blacklist(tokenString string, until time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for t, exp := range m.blacklisted {
		if now.After(exp) {
			delete(m.blacklisted, t)
		}
	}
	m.blacklisted[tokenString] = until
}

func (m *TokenManager) IsBlacklisted(tokenString string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.blacklisted[tokenString]
	return ok && time.Now().Before(exp)
}

// CheckPassword compares a login attempt with the configured operator
// password, which may be stored as a bcrypt hash or as plain text.
func CheckPassword(stored, attempt string) bool {
	if stored == "" {
		return false
	}
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1
}
