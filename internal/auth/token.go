package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minTokenSecretBytes = 32

var (
	// ErrMissingSecret is returned when the signing secret is absent or too short.
	ErrMissingSecret = errors.New("token signing secret is missing or shorter than 32 bytes")
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidExpiry is returned when a token is requested with a non-positive lifetime.
	ErrInvalidExpiry = errors.New("token expiry must be positive")
)

// Claims are the identity claims carried by an access token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenProvider issues and verifies HS256-signed access tokens.
type TokenProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenProvider creates a TokenProvider. It fails when the secret is unusable,
// so a misconfigured process stops at startup rather than on first login.
func NewTokenProvider(secret, issuer string) (*TokenProvider, error) {
	if len(secret) < minTokenSecretBytes {
		return nil, ErrMissingSecret
	}
	return &TokenProvider{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for userID that expires expiryHours from now.
func (p *TokenProvider) Issue(userID string, expiryHours int) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user ID is required")
	}
	if expiryHours <= 0 {
		return "", time.Time{}, ErrInvalidExpiry
	}

	now := p.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(time.Duration(expiryHours) * time.Hour)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies the signature, issuer and lifetime of a token and returns its claims.
// Every failure wraps ErrInvalidToken.
func (p *TokenProvider) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	return claims, nil
}
