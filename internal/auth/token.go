// Package auth issues and verifies the signed, time-bounded bearer credentials
// used by the API and the identity service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrWrongType    = errors.New("token has wrong type")
	ErrRevoked      = errors.New("token is blacklisted")
)

// Principal is the authenticated identity behind a request.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{
		UserID:    c.Subject,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		IsStaff:   c.IsStaff,
	}
}

// Pair is the token response of the obtain and refresh endpoints.
// swagger:model TokenPair
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenRequest payload of the obtain endpoint.
// swagger:model TokenRequest
type TokenRequest struct {
	Email    string `json:"email"    binding:"required" example:"buyer@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret!pass"`
}

// RefreshRequest payload of the refresh endpoint.
// swagger:model RefreshRequest
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Revoker records refresh tokens that must no longer be accepted.
type Revoker interface {
	// Revoke returns ErrRevoked when jti was already revoked.
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoker    Revoker
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, revoker Revoker) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoker:    revoker,
		now:        time.Now,
	}
}

func (i *Issuer) sign(p Principal, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsStaff:   p.IsStaff,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Issue returns a fresh access/refresh pair for p.
func (i *Issuer) Issue(p Principal) (Pair, error) {
	access, err := i.sign(p, TokenAccess, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access: %w", err)
	}
	refresh, err := i.sign(p, TokenRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) parse(raw, typ string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != typ {
		return nil, ErrWrongType
	}
	return &claims, nil
}

// Resolve verifies an access token and returns its principal.
func (i *Issuer) Resolve(_ context.Context, raw string) (Principal, error) {
	claims, err := i.parse(raw, TokenAccess)
	if err != nil {
		return Principal{}, err
	}
	return claims.Principal(), nil
}

// Refresh rotates a refresh token: the presented token is revoked until its
// own expiry and a new pair is issued. current reloads the principal so that
// profile changes reach the new access token; it may reject the user.
func (i *Issuer) Refresh(ctx context.Context, raw string, current func(ctx context.Context, userID string) (Principal, error)) (Pair, error) {
	claims, err := i.parse(raw, TokenRefresh)
	if err != nil {
		return Pair{}, err
	}
	revoked, err := i.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Pair{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Pair{}, ErrRevoked
	}

	p := claims.Principal()
	if current != nil {
		if p, err = current(ctx, claims.Subject); err != nil {
			return Pair{}, err
		}
	}
	if err := i.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, ErrRevoked) {
			return Pair{}, ErrRevoked
		}
		return Pair{}, fmt.Errorf("revoke refresh: %w", err)
	}
	return i.Issue(p)
}
