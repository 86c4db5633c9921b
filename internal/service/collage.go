package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/msomdec/collage-studio/internal/domain"
)

// CollageService persists composites and serves saved collages. It is the
// picker's persistence collaborator via domain.CollageWriter.
type CollageService struct {
	collages domain.CollageRepository
	shares   domain.CollageShareRepository
	files    domain.FileStore
}

// NewCollageService creates a new CollageService.
func NewCollageService(collages domain.CollageRepository, shares domain.CollageShareRepository, files domain.FileStore) *CollageService {
	return &CollageService{collages: collages, shares: shares, files: files}
}

// Write stores the composite bytes and a metadata row, returning the new
// collage id. One call, one write; no retries at this layer.
func (s *CollageService) Write(ctx context.Context, userID int64, img domain.Image, imageCount int) (string, error) {
	id := uuid.NewString()
	key := "collages/" + id

	if err := s.files.Save(ctx, key, img.Data); err != nil {
		return "", fmt.Errorf("save composite: %w", err)
	}

	collage := &domain.Collage{
		ID:          id,
		UserID:      userID,
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
		StorageKey:  key,
		ImageCount:  imageCount,
	}
	if err := s.collages.Create(ctx, collage); err != nil {
		// Best-effort cleanup of the stored bytes.
		s.files.Delete(ctx, key)
		return "", fmt.Errorf("create collage record: %w", err)
	}

	return id, nil
}

// ListByUser returns the user's saved collages, newest first.
func (s *CollageService) ListByUser(ctx context.Context, userID int64) ([]domain.Collage, error) {
	return s.collages.ListByUser(ctx, userID)
}

// GetFile returns the composite bytes and content type after ownership
// check.
func (s *CollageService) GetFile(ctx context.Context, userID int64, collageID string) ([]byte, string, error) {
	collage, err := s.collages.GetByID(ctx, collageID)
	if err != nil {
		return nil, "", fmt.Errorf("get collage: %w", err)
	}
	if collage.UserID != userID {
		return nil, "", domain.ErrUnauthorized
	}

	data, err := s.files.Get(ctx, collage.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("get composite: %w", err)
	}
	return data, collage.ContentType, nil
}

// Delete removes a collage, its stored bytes, and any share link, after
// ownership check.
func (s *CollageService) Delete(ctx context.Context, userID int64, collageID string) error {
	collage, err := s.collages.GetByID(ctx, collageID)
	if err != nil {
		return fmt.Errorf("get collage: %w", err)
	}
	if collage.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := s.files.Delete(ctx, collage.StorageKey); err != nil {
		return fmt.Errorf("delete composite: %w", err)
	}
	if err := s.collages.Delete(ctx, collageID); err != nil {
		return fmt.Errorf("delete collage record: %w", err)
	}
	return nil
}

// CreateShare creates a public share link for a saved collage. If one
// already exists, it is returned (idempotent).
func (s *CollageService) CreateShare(ctx context.Context, userID int64, collageID string) (*domain.CollageShare, error) {
	collage, err := s.collages.GetByID(ctx, collageID)
	if err != nil {
		return nil, err
	}
	if collage.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.shares.GetByCollage(ctx, collageID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get share: %w", err)
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, err
	}
	share := &domain.CollageShare{CollageID: collageID, Token: token}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}
	return share, nil
}

// GetShare returns the existing share link for a collage after ownership
// check. ErrNotFound when the collage has no share.
func (s *CollageService) GetShare(ctx context.Context, userID int64, collageID string) (*domain.CollageShare, error) {
	collage, err := s.collages.GetByID(ctx, collageID)
	if err != nil {
		return nil, err
	}
	if collage.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return s.shares.GetByCollage(ctx, collageID)
}

// GetSharedFile resolves a share token to the collage bytes. No
// authentication: possession of the token grants read access.
func (s *CollageService) GetSharedFile(ctx context.Context, token string) ([]byte, string, error) {
	share, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, "", err
	}

	collage, err := s.collages.GetByID(ctx, share.CollageID)
	if err != nil {
		return nil, "", fmt.Errorf("get shared collage: %w", err)
	}

	data, err := s.files.Get(ctx, collage.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("get shared composite: %w", err)
	}
	return data, collage.ContentType, nil
}

// RevokeShare removes the share link for a collage after ownership check.
func (s *CollageService) RevokeShare(ctx context.Context, userID int64, collageID string) error {
	collage, err := s.collages.GetByID(ctx, collageID)
	if err != nil {
		return err
	}
	if collage.UserID != userID {
		return domain.ErrUnauthorized
	}

	share, err := s.shares.GetByCollage(ctx, collageID)
	if err != nil {
		return err
	}
	return s.shares.Delete(ctx, share.ID)
}

func generateShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
