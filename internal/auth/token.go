package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/tenant"
)

type authClaims struct {
	UserID int64       `json:"userId"`
	ShopID *int64      `json:"shopId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed, time-limited credentials.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokens(secret string, ttl time.Duration, clk clock.Clock) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue signs a token for user. It returns the token and its expiry.
func (t *Tokens) Issue(user domain.User) (string, time.Time, error) {
	now := t.clock.Now()
	expires := now.Add(t.ttl)
	claims := authClaims{
		UserID: user.ID,
		ShopID: user.ShopID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify checks signature and expiry and returns the bearer's identity.
func (t *Tokens) Verify(raw string) (tenant.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return tenant.Identity{}, &domain.AuthError{Message: "missing bearer token"}
	}
	token, err := jwt.ParseWithClaims(raw, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return tenant.Identity{}, &domain.AuthError{Message: "token expired"}
		}
		return tenant.Identity{}, &domain.AuthError{Message: "invalid token"}
	}
	claims, ok := token.Claims.(*authClaims)
	if !ok || claims.UserID == 0 || !claims.Role.Valid() {
		return tenant.Identity{}, &domain.AuthError{Message: "invalid token claims"}
	}
	id := tenant.Identity{UserID: claims.UserID, Role: claims.Role}
	if claims.ShopID != nil {
		id.ShopID = *claims.ShopID
	}
	return id, nil
}
