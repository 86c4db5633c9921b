package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/msomdec/collage-studio/internal/domain"
)

const (
	maxAssetSize     = 10 * 1024 * 1024 // 10MB
	maxAssetsPerUser = 200
	thumbnailEdge    = 256 // longest edge of a generated thumbnail, px
)

// AssetService owns the asset library: uploads, listing, and deletion, plus
// the retrieval facade the picker pipeline consumes. Full-resolution
// fetches filter out degraded intermediates so only final images reach the
// selection gate; thumbnail fetches are idempotent per asset id, backed by
// a cache that lives for the service lifetime.
type AssetService struct {
	assets domain.AssetRepository
	files  domain.FileStore
	source domain.AssetSource

	mu     sync.Mutex
	thumbs map[string]*thumbEntry
}

// thumbEntry guards a single cache slot. The sync.Once guarantees exactly
// one underlying fetch per asset id no matter how many callers race on a
// cold key.
type thumbEntry struct {
	once sync.Once
	img  domain.Image
	err  error
}

// NewAssetService creates a new AssetService reading bitmaps from source.
func NewAssetService(assets domain.AssetRepository, files domain.FileStore, source domain.AssetSource) *AssetService {
	return &AssetService{
		assets: assets,
		files:  files,
		source: source,
		thumbs: make(map[string]*thumbEntry),
	}
}

// Upload validates and stores an image in the user's library, generating a
// thumbnail rendition alongside the full-resolution bytes.
func (s *AssetService) Upload(ctx context.Context, userID int64, filename, contentType string, data []byte) (*domain.Asset, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, fmt.Errorf("%w: only JPEG and PNG images are accepted", domain.ErrInvalidInput)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}

	count, err := s.assets.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}
	if count >= maxAssetsPerUser {
		return nil, fmt.Errorf("%w: library limit of %d images reached", domain.ErrInvalidInput, maxAssetsPerUser)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: image could not be decoded", domain.ErrInvalidInput)
	}

	thumb, err := encodeThumbnail(decoded)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	id := uuid.NewString()
	fullKey := "assets/" + id + "/full"
	thumbKey := "assets/" + id + "/thumb"

	if err := s.files.Save(ctx, fullKey, data); err != nil {
		return nil, fmt.Errorf("save full image: %w", err)
	}
	if err := s.files.Save(ctx, thumbKey, thumb); err != nil {
		s.files.Delete(ctx, fullKey)
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}

	asset := &domain.Asset{
		ID:          id,
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		FullKey:     fullKey,
		ThumbKey:    thumbKey,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		// Best-effort cleanup of the stored files.
		s.files.Delete(ctx, fullKey)
		s.files.Delete(ctx, thumbKey)
		return nil, fmt.Errorf("create asset record: %w", err)
	}

	return asset, nil
}

// ListByUser returns the user's library in upload order.
func (s *AssetService) ListByUser(ctx context.Context, userID int64) ([]domain.Asset, error) {
	return s.assets.ListByUser(ctx, userID)
}

// Delete removes an asset and its stored renditions after ownership check.
func (s *AssetService) Delete(ctx context.Context, userID int64, assetID string) error {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("get asset: %w", err)
	}
	if asset.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := s.files.Delete(ctx, asset.FullKey); err != nil {
		return fmt.Errorf("delete full image: %w", err)
	}
	if err := s.files.Delete(ctx, asset.ThumbKey); err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	if err := s.assets.Delete(ctx, assetID); err != nil {
		return fmt.Errorf("delete asset record: %w", err)
	}
	return nil
}

// GetOwned returns asset metadata after ownership check.
func (s *AssetService) GetOwned(ctx context.Context, userID int64, assetID string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	if asset.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return asset, nil
}

// FetchFull resolves an asset to its final full-resolution image. Degraded
// intermediates delivered by a progressive source are discarded; only the
// last final delivery is returned.
func (s *AssetService) FetchFull(ctx context.Context, assetID string) (domain.Image, error) {
	deliveries, err := s.source.FetchFull(ctx, assetID)
	if err != nil {
		return domain.Image{}, err
	}

	var final *domain.Image
	for d := range deliveries {
		if d.Degraded {
			continue
		}
		img := d.Image
		final = &img
	}
	if final == nil {
		return domain.Image{}, domain.ErrNotFound
	}
	return *final, nil
}

// FetchThumbnail returns the thumbnail for an asset, fetching it at most
// once per id. Concurrent callers on a cold key share the single underlying
// fetch; a failed fetch is not cached, so a later call may retry.
func (s *AssetService) FetchThumbnail(ctx context.Context, assetID string) (domain.Image, error) {
	s.mu.Lock()
	entry, ok := s.thumbs[assetID]
	if !ok {
		entry = &thumbEntry{}
		s.thumbs[assetID] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.img, entry.err = s.source.FetchThumbnail(ctx, assetID)
	})
	if entry.err != nil {
		s.mu.Lock()
		if s.thumbs[assetID] == entry {
			delete(s.thumbs, assetID)
		}
		s.mu.Unlock()
		return domain.Image{}, entry.err
	}
	return entry.img, nil
}

// encodeThumbnail downscales decoded to fit thumbnailEdge and encodes it as
// JPEG.
func encodeThumbnail(decoded image.Image) ([]byte, error) {
	b := decoded.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > h {
		h = h * thumbnailEdge / w
		w = thumbnailEdge
	} else {
		w = w * thumbnailEdge / h
		h = thumbnailEdge
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), decoded, b, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LibrarySource reads asset bitmaps straight out of the repository and file
// store. It delivers a single final image per fetch; progressive sources
// with degraded intermediates can replace it behind domain.AssetSource.
type LibrarySource struct {
	assets domain.AssetRepository
	files  domain.FileStore
}

// NewLibrarySource creates a LibrarySource.
func NewLibrarySource(assets domain.AssetRepository, files domain.FileStore) *LibrarySource {
	return &LibrarySource{assets: assets, files: files}
}

// FetchFull delivers the stored full-resolution image and closes the
// stream.
func (l *LibrarySource) FetchFull(ctx context.Context, assetID string) (<-chan domain.AssetDelivery, error) {
	asset, err := l.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	data, err := l.files.Get(ctx, asset.FullKey)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.AssetDelivery, 1)
	out <- domain.AssetDelivery{Image: domain.Image{
		AssetID:     asset.ID,
		ContentType: asset.ContentType,
		Data:        data,
	}}
	close(out)
	return out, nil
}

// FetchThumbnail returns the stored thumbnail rendition.
func (l *LibrarySource) FetchThumbnail(ctx context.Context, assetID string) (domain.Image, error) {
	asset, err := l.assets.GetByID(ctx, assetID)
	if err != nil {
		return domain.Image{}, err
	}
	data, err := l.files.Get(ctx, asset.ThumbKey)
	if err != nil {
		return domain.Image{}, err
	}
	return domain.Image{AssetID: asset.ID, ContentType: "image/jpeg", Data: data}, nil
}
