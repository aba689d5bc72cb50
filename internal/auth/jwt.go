package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/panelmgmt/pms-core/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims carried by internally issued tokens.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 tokens for the service's own issuer.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		secret:   []byte(cfg.JWT.Secret),
		issuer:   cfg.JWT.Issuer,
		audience: cfg.JWT.Audience,
		expiry:   time.Duration(cfg.JWT.ExpirationDays) * 24 * time.Hour,
	}
}

// Issue creates a signed token for the given user identity.
func (m *Manager) Issue(userID, email, name, picture, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:   email,
		Name:    name,
		Picture: picture,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token issued by this service.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
