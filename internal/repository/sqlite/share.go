package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/collage-studio/internal/domain"
)

// shareRepo implements domain.CollageShareRepository using SQLite.
type shareRepo struct {
	db *sql.DB
}

func (r *shareRepo) Create(ctx context.Context, share *domain.CollageShare) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO collage_shares (collage_id, token) VALUES (?, ?)`,
		share.CollageID, share.Token,
	)
	if err != nil {
		return fmt.Errorf("insert collage share: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get share id: %w", err)
	}
	share.ID = id
	return nil
}

func (r *shareRepo) GetByToken(ctx context.Context, token string) (*domain.CollageShare, error) {
	s := &domain.CollageShare{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, collage_id, token, created_at
		 FROM collage_shares WHERE token = ?`, token,
	).Scan(&s.ID, &s.CollageID, &s.Token, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get share by token: %w", err)
	}
	return s, nil
}

func (r *shareRepo) GetByCollage(ctx context.Context, collageID string) (*domain.CollageShare, error) {
	s := &domain.CollageShare{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, collage_id, token, created_at
		 FROM collage_shares WHERE collage_id = ?`, collageID,
	).Scan(&s.ID, &s.CollageID, &s.Token, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get share by collage: %w", err)
	}
	return s, nil
}

func (r *shareRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM collage_shares WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete collage share: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
