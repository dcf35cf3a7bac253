package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"school-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for tokens that fail parsing or verification
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the caller of a write request
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies HS256 tokens
type JWTUtil struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// New returns a JWTUtil configured from cfg
func New(cfg *config.JWTConfig) *JWTUtil {
	hours := cfg.ExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return &JWTUtil{
		secret:     []byte(cfg.SigningKey),
		expiration: time.Duration(hours) * time.Hour,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token for subject
func (j *JWTUtil) GenerateToken(subject, role string) (string, error) {
	now := j.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken validates and parses a token
func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
