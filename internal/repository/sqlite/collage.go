package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
)

// collageRepo implements domain.CollageRepository using SQLite.
type collageRepo struct {
	db *sql.DB
}

func (r *collageRepo) Create(ctx context.Context, collage *domain.Collage) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collages (id, user_id, content_type, size, storage_key, image_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		collage.ID, collage.UserID, collage.ContentType,
		collage.Size, collage.StorageKey, collage.ImageCount, now,
	)
	if err != nil {
		return fmt.Errorf("insert collage: %w", err)
	}
	collage.CreatedAt = now
	return nil
}

func (r *collageRepo) GetByID(ctx context.Context, id string) (*domain.Collage, error) {
	c := &domain.Collage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, content_type, size, storage_key, image_count, created_at
		 FROM collages WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.ContentType, &c.Size, &c.StorageKey, &c.ImageCount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get collage: %w", err)
	}
	return c, nil
}

func (r *collageRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Collage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, content_type, size, storage_key, image_count, created_at
		 FROM collages WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list collages: %w", err)
	}
	defer rows.Close()

	var collages []domain.Collage
	for rows.Next() {
		var c domain.Collage
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContentType,
			&c.Size, &c.StorageKey, &c.ImageCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collage: %w", err)
		}
		collages = append(collages, c)
	}
	return collages, rows.Err()
}

func (r *collageRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM collages WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count collages: %w", err)
	}
	return count, nil
}

func (r *collageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM collages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete collage: %w", err)
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
