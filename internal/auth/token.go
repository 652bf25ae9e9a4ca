package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenVerify  TokenType = "verify"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	UserID    uint      `json:"uid"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
}

// TokenPair is returned on login and registration.
type TokenPair struct {
	AccessToken  string    `json:"access"`
	RefreshToken string    `json:"refresh"`
	ExpiresAt    time.Time `json:"access_expires_at"`
}

// TokenManager issues and validates HMAC-SHA256 signed JWTs.
type TokenManager struct {
	signingKey []byte
	config     TokenConfig
	now        func() time.Time
	clockSkew  time.Duration
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.VerifyTTL <= 0 {
		cfg.VerifyTTL = 24 * time.Hour
	}
	return &TokenManager{
		signingKey: []byte(cfg.Secret),
		config:     cfg,
		now:        time.Now,
		clockSkew:  time.Minute,
	}, nil
}

// WithClock swaps the time source. Intended for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) ttl(t TokenType) time.Duration {
	switch t {
	case TokenRefresh:
		return m.config.RefreshTTL
	case TokenVerify:
		return m.config.VerifyTTL
	default:
		return m.config.AccessTTL
	}
}

// Issue signs a new token of type t for userID.
func (m *TokenManager) Issue(userID uint, t TokenType) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: t,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(t))),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", t, err)
	}
	return signed, claims, nil
}

func (m *TokenManager) IssuePair(userID uint) (*TokenPair, error) {
	access, accessClaims, err := m.Issue(userID, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, _, err := m.Issue(userID, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessClaims.ExpiresAt.Time,
	}, nil
}

// Parse validates signature, expiry and type.
func (m *TokenManager) Parse(tokenString string, expected TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
