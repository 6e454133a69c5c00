package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "canvas-backend/pkg/errors"
)

var (
	// ErrExpiredToken is returned for structurally valid but expired tokens
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken is returned for tokens that fail validation
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the token claims the engine cares about
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validator checks HS256 bearer tokens
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a token validator
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses and verifies a token, returning its claims
func (v *Validator) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Generator issues HS256 tokens, used by tests and local tooling
type Generator struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewGenerator creates a token generator
func NewGenerator(secret, issuer string, expiry time.Duration) *Generator {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Generator{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

// GenerateToken issues a signed token for the user
func (g *Generator) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

type contextKey struct{}

// SetUserInContext stores the authenticated claims on the context
func SetUserInContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// GetUserFromContext returns the authenticated claims, or an
// unauthorized error when the request was not authenticated
func GetUserFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, pkgerrors.NewUnauthorizedError("")
	}
	return claims, nil
}
