package ports

import (
	"context"
	"io"
	"time"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

// PhotoStore keeps uploaded profile photos keyed by file name.
type PhotoStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Remove(ctx context.Context, name string) error
}

// TokenIssuer signs session credentials.
type TokenIssuer interface {
	Sign(claims domain.Claims) (string, error)
	TTL() time.Duration
}

// RevocationStore remembers skaters whose outstanding credentials must be
// rejected, for at most the credential lifetime.
type RevocationStore interface {
	Revoke(ctx context.Context, skaterID int64, ttl time.Duration) error
	IsRevoked(ctx context.Context, skaterID int64) (bool, error)
}

// AuditPublisher hands lifecycle events to the audit trail without blocking.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}

// AuditRepository persists lifecycle events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}
