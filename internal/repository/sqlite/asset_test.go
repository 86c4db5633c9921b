package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/msomdec/collage-studio/internal/domain"
)

func TestAssetRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "assets@example.com")
	repo := db.Assets()

	asset := &domain.Asset{
		ID:          "asset-1",
		UserID:      userID,
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        123,
		FullKey:     "assets/asset-1/full",
		ThumbKey:    "assets/asset-1/thumb",
	}
	if err := repo.Create(ctx, asset); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if asset.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	got, err := repo.GetByID(ctx, "asset-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Filename != "photo.png" || got.UserID != userID {
		t.Fatalf("unexpected asset %+v", got)
	}
}

func TestAssetRepo_ListByUserInUploadOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "list@example.com")
	otherID := createTestUser(t, db, "other@example.com")
	repo := db.Assets()

	for i := 0; i < 3; i++ {
		asset := &domain.Asset{
			ID:          fmt.Sprintf("mine-%d", i),
			UserID:      userID,
			Filename:    fmt.Sprintf("%d.png", i),
			ContentType: "image/png",
			FullKey:     fmt.Sprintf("assets/mine-%d/full", i),
			ThumbKey:    fmt.Sprintf("assets/mine-%d/thumb", i),
		}
		if err := repo.Create(ctx, asset); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if err := repo.Create(ctx, &domain.Asset{
		ID: "theirs", UserID: otherID, Filename: "x.png",
		ContentType: "image/png", FullKey: "assets/theirs/full", ThumbKey: "assets/theirs/thumb",
	}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	assets, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	for i, a := range assets {
		if want := fmt.Sprintf("mine-%d", i); a.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, a.ID)
		}
	}

	count, err := repo.CountByUser(ctx, userID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestAssetRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "del@example.com")
	repo := db.Assets()

	if err := repo.Create(ctx, &domain.Asset{
		ID: "gone", UserID: userID, Filename: "g.png",
		ContentType: "image/png", FullKey: "assets/gone/full", ThumbKey: "assets/gone/thumb",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
