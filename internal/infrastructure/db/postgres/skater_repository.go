package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const skaterColumns = `s.id, s.email, s.nombre, s.password, s.anos_experiencia, s.especialidad, s.foto, s.estado`

// SkaterRepository implements ports.SkaterRepository on top of a pgx pool.
type SkaterRepository struct {
	pool *pgxpool.Pool
}

func NewSkaterRepository(pool *pgxpool.Pool) *SkaterRepository {
	return &SkaterRepository{pool: pool}
}

// WithinTx runs fn in a transaction. Rollback is deferred and is a no-op
// once the transaction has committed.
func (r *SkaterRepository) WithinTx(ctx context.Context, fn func(tx ports.SkaterTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&skaterTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SkaterRepository) FindByID(ctx context.Context, id int64) (*domain.Skater, error) {
	query := `
		SELECT ` + skaterColumns + `, COALESCE(a.estado, FALSE)
		FROM skaters s
		LEFT JOIN administradores a ON s.id = a.id_skater
		WHERE s.id = $1
	`
	return scanSkaterWithAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *SkaterRepository) FindByEmail(ctx context.Context, email string) (*domain.Skater, error) {
	query := `
		SELECT ` + skaterColumns + `, COALESCE(a.estado, FALSE)
		FROM skaters s
		LEFT JOIN administradores a ON s.id = a.id_skater
		WHERE s.email = $1
	`
	return scanSkaterWithAdmin(r.pool.QueryRow(ctx, query, email))
}

func (r *SkaterRepository) List(ctx context.Context) ([]*domain.Skater, error) {
	query := `
		SELECT ` + skaterColumns + `, COALESCE(a.estado, FALSE)
		FROM skaters s
		LEFT JOIN administradores a ON s.id = a.id_skater
		ORDER BY s.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list skaters: %w", err)
	}
	defer rows.Close()

	skaters := []*domain.Skater{}
	for rows.Next() {
		s, err := scanSkaterWithAdmin(rows)
		if err != nil {
			return nil, err
		}
		skaters = append(skaters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list skaters: %w", err)
	}
	return skaters, nil
}

func (r *SkaterRepository) Update(ctx context.Context, s *domain.Skater) error {
	query := `
		UPDATE skaters
		SET email = $1, nombre = $2, password = $3, anos_experiencia = $4, especialidad = $5
		WHERE id = $6
	`

	tag, err := r.pool.Exec(ctx, query, s.Email, s.Name, s.PasswordHash, s.YearsExperience, s.Specialty, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("update skater: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSkaterNotFound
	}
	return nil
}

// IsActiveAdmin reports whether id has an administrator record with estado true.
func (r *SkaterRepository) IsActiveAdmin(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT a.estado
		FROM skaters s
		INNER JOIN administradores a ON s.id = a.id_skater
		WHERE s.id = $1
	`

	var active bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check admin: %w", err)
	}
	return active, nil
}

// GrantAdmin creates or updates the administrator record of id.
func (r *SkaterRepository) GrantAdmin(ctx context.Context, id int64, active bool) error {
	query := `
		INSERT INTO administradores (id_skater, estado) VALUES ($1, $2)
		ON CONFLICT (id_skater) DO UPDATE SET estado = EXCLUDED.estado
	`
	if _, err := r.pool.Exec(ctx, query, id, active); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

type skaterTx struct {
	tx pgx.Tx
}

func (t *skaterTx) Insert(ctx context.Context, s *domain.Skater) (int64, error) {
	query := `
		INSERT INTO skaters (email, nombre, password, anos_experiencia, especialidad, foto, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := t.tx.QueryRow(ctx, query,
		s.Email,
		s.Name,
		s.PasswordHash,
		s.YearsExperience,
		s.Specialty,
		s.Photo,
		s.Active,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert skater: %w", err)
	}
	return id, nil
}

func (t *skaterTx) FindForUpdate(ctx context.Context, id int64) (*domain.Skater, error) {
	query := `
		SELECT ` + skaterColumns + `
		FROM skaters s
		WHERE s.id = $1
		FOR UPDATE
	`

	var s domain.Skater
	err := t.tx.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Email,
		&s.Name,
		&s.PasswordHash,
		&s.YearsExperience,
		&s.Specialty,
		&s.Photo,
		&s.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSkaterNotFound
		}
		return nil, fmt.Errorf("find skater for update: %w", err)
	}
	return &s, nil
}

func (t *skaterTx) SetPhoto(ctx context.Context, id int64, photo string) error {
	return t.execOne(ctx, "set photo", `UPDATE skaters SET foto = $1 WHERE id = $2`, photo, id)
}

func (t *skaterTx) Delete(ctx context.Context, id int64) error {
	return t.execOne(ctx, "delete skater", `DELETE FROM skaters WHERE id = $1`, id)
}

func (t *skaterTx) SetActive(ctx context.Context, id int64, active bool) error {
	return t.execOne(ctx, "set estado", `UPDATE skaters SET estado = $1 WHERE id = $2`, active, id)
}

// execOne runs a statement that must touch exactly one row.
func (t *skaterTx) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSkaterNotFound
	}
	return nil
}

func scanSkaterWithAdmin(row pgx.Row) (*domain.Skater, error) {
	var s domain.Skater
	err := row.Scan(
		&s.ID,
		&s.Email,
		&s.Name,
		&s.PasswordHash,
		&s.YearsExperience,
		&s.Specialty,
		&s.Photo,
		&s.Active,
		&s.Admin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSkaterNotFound
		}
		return nil, fmt.Errorf("scan skater: %w", err)
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
