package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
)

// assetRepo implements domain.AssetRepository using SQLite.
type assetRepo struct {
	db *sql.DB
}

func (r *assetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, user_id, filename, content_type, size, full_key, thumb_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.UserID, asset.Filename, asset.ContentType,
		asset.Size, asset.FullKey, asset.ThumbKey, now,
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	asset.CreatedAt = now
	return nil
}

func (r *assetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	a := &domain.Asset{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, content_type, size, full_key, thumb_key, created_at
		 FROM assets WHERE id = ?`, id,
	).Scan(&a.ID, &a.UserID, &a.Filename, &a.ContentType, &a.Size, &a.FullKey, &a.ThumbKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (r *assetRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, filename, content_type, size, full_key, thumb_key, created_at
		 FROM assets WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Filename, &a.ContentType,
			&a.Size, &a.FullKey, &a.ThumbKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *assetRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
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

func (r *assetRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM assets WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}
