// Package jwt issues and checks the bearer tokens that guard the moderation
// API when a server secret is configured.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

const (
	issuer = "imageguard"
	leeway = 30 * time.Second
)

type Claims struct {
	jwt.RegisteredClaims
}

type Manager interface {
	CreateToken(subject string, ttl time.Duration) (string, error)
	DecodeToken(token string) (*Claims, error)
}

type manager struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewJwtManager(secret string) Manager {
	return &manager{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(leeway),
		),
		now: time.Now,
	}
}

// CreateToken signs an HS256 token for subject. Without a ttl the token
// does not expire.
func (m *manager) CreateToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	now := m.now()
	rc := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: rc}).SignedString(m.secret)
}

func (m *manager) DecodeToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	default:
		return nil, ErrInvalidToken
	}
}
