package domain

import (
	"context"
	"time"
)

// Collage holds metadata about a saved composite.
type Collage struct {
	ID          string // UUID, also the persistence id surfaced in SaveResult
	UserID      int64
	ContentType string
	Size        int64  // Encoded composite size in bytes
	StorageKey  string // FileStore key for the composite bytes
	ImageCount  int    // Number of working-set images the composite was built from
	CreatedAt   time.Time
}

// CollageRepository handles saved-collage metadata persistence.
type CollageRepository interface {
	Create(ctx context.Context, collage *Collage) error
	GetByID(ctx context.Context, id string) (*Collage, error)
	ListByUser(ctx context.Context, userID int64) ([]Collage, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id string) error
}

// SaveResult is the settled outcome of the most recent save attempt.
// Each save overwrites the previous result; outcomes are never accumulated.
type SaveResult struct {
	ID  string // Collage id when the save succeeded
	Err string // Failure message when it did not
}

// Saved reports whether the save settled successfully.
func (r SaveResult) Saved() bool {
	return r.Err == ""
}

// CollageWriter persists a composite image, returning its id. A single
// invocation issues exactly one write; retries are the caller's concern.
type CollageWriter interface {
	Write(ctx context.Context, userID int64, img Image, imageCount int) (string, error)
}

// Compositor derives a single composite from an ordered set of images.
// It is pure and synchronous: the same inputs always yield the same
// output, an empty input yields nil, and it never fails.
type Compositor interface {
	Composite(images []Image, target Size) *Image
}
