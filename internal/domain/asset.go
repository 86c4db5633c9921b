package domain

import (
	"context"
	"time"
)

// Asset holds metadata about an image in a user's asset library.
type Asset struct {
	ID          string // UUID, also used in URLs
	UserID      int64
	Filename    string // Original upload filename
	ContentType string // "image/jpeg" or "image/png"
	Size        int64  // Full-resolution file size in bytes
	FullKey     string // FileStore key for the full-resolution bytes
	ThumbKey    string // FileStore key for the thumbnail bytes
	CreatedAt   time.Time
}

// AssetRepository handles asset metadata persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id string) (*Asset, error)
	ListByUser(ctx context.Context, userID int64) ([]Asset, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// AssetDelivery is a single result produced while resolving an asset.
// Sources that load progressively may deliver one or more degraded
// intermediates before the final full-resolution image.
type AssetDelivery struct {
	Image    Image
	Degraded bool
}

// AssetSource resolves library assets to bitmaps. FetchFull streams
// deliveries for an asset and closes the channel after the final one;
// FetchThumbnail returns a single small rendition.
type AssetSource interface {
	FetchFull(ctx context.Context, assetID string) (<-chan AssetDelivery, error)
	FetchThumbnail(ctx context.Context, assetID string) (Image, error)
}

// FileStore abstracts raw file byte storage.
// The initial implementation stores BLOBs in SQLite; this interface
// allows swapping to filesystem, S3, or another backend later.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
