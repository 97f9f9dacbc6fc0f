package ports

import (
	"context"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

// SkaterRepository defines persistence for skater accounts and their
// administrator records.
type SkaterRepository interface {
	// WithinTx runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx SkaterTx) error) error

	// FindByID and FindByEmail populate Skater.Admin from the administrators table.
	FindByID(ctx context.Context, id int64) (*domain.Skater, error)
	FindByEmail(ctx context.Context, email string) (*domain.Skater, error)
	List(ctx context.Context) ([]*domain.Skater, error)
	// Update overwrites email, name, password hash, years and specialty.
	Update(ctx context.Context, s *domain.Skater) error
	IsActiveAdmin(ctx context.Context, id int64) (bool, error)
}

// SkaterTx is the set of statements available inside a transaction.
type SkaterTx interface {
	Insert(ctx context.Context, s *domain.Skater) (int64, error)
	// FindForUpdate reads and locks the row until the transaction ends.
	FindForUpdate(ctx context.Context, id int64) (*domain.Skater, error)
	SetPhoto(ctx context.Context, id int64, photo string) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}
