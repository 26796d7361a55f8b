package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrInvalidToken is returned when a token fails validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoSecret is returned when the service is constructed without a secret
	ErrNoSecret = errors.New("jwt secret must not be empty")
)

// Claims are the claims embedded in every issued token
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// JWT issues and validates HS256 tokens
type JWT struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// New creates a new JWT service
func New(secret string, accessDuration, refreshDuration time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &JWT{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}, nil
}

// Secret exposes the signing key for the HTTP verifier middleware
func (j *JWT) Secret() []byte {
	return j.secret
}

// GenerateTokenPair generates a new pair of access and refresh tokens
func (j *JWT) GenerateTokenPair(userID ulid.ULID, roles []string) (*TokenPair, error) {
	accessToken, err := j.sign(userID, roles, j.accessDuration)
	if err != nil {
		return nil, err
	}
	refreshToken, err := j.sign(userID, roles, j.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// ValidateToken parses and validates a token, returning its claims
func (j *JWT) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (j *JWT) sign(userID ulid.ULID, roles []string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}
