package domain

import (
	"context"
	"time"
)

// CollageShare is a public link to a saved collage, addressed by an
// unguessable token.
type CollageShare struct {
	ID        int64
	CollageID string
	Token     string
	CreatedAt time.Time
}

// CollageShareRepository handles share link persistence.
type CollageShareRepository interface {
	Create(ctx context.Context, share *CollageShare) error
	GetByToken(ctx context.Context, token string) (*CollageShare, error)
	GetByCollage(ctx context.Context, collageID string) (*CollageShare, error)
	Delete(ctx context.Context, id int64) error
}
