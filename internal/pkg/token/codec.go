// Package token signs and verifies the HS256 session credentials handed out
// at login.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

// DefaultTTL is the credential lifetime when none is configured.
const DefaultTTL = 15 * time.Minute

type sessionClaims struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Codec signs and verifies credentials with a single process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long a freshly signed credential stays valid.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Sign embeds claims in a credential expiring TTL after now.
func (c *Codec) Sign(claims domain.Claims) (string, error) {
	now := c.now()
	sc := sessionClaims{
		ID:    claims.ID,
		Name:  claims.Name,
		Email: claims.Email,
		Admin: claims.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes a credential. Failures wrap domain.ErrTokenExpired,
// domain.ErrTokenSignatureInvalid or domain.ErrTokenMalformed.
func (c *Codec) Verify(tokenString string) (*domain.Claims, error) {
	sc := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, sc, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.Claims{
		ID:    sc.ID,
		Name:  sc.Name,
		Email: sc.Email,
		Admin: sc.Admin,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
