package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/repository/sqlite"
)

func createTestCollage(t *testing.T, db *sqlite.DB, id string, userID int64) {
	t.Helper()
	err := db.Collages().Create(context.Background(), &domain.Collage{
		ID:          id,
		UserID:      userID,
		ContentType: "image/png",
		Size:        64,
		StorageKey:  "collages/" + id,
		ImageCount:  4,
	})
	if err != nil {
		t.Fatalf("create collage %s: %v", id, err)
	}
}

func TestCollageRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "collage@example.com")

	createTestCollage(t, db, "c1", userID)

	got, err := db.Collages().GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != userID || got.ImageCount != 4 {
		t.Fatalf("unexpected collage %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestCollageRepo_ListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "newest@example.com")

	for i := 0; i < 3; i++ {
		createTestCollage(t, db, fmt.Sprintf("c%d", i), userID)
		time.Sleep(5 * time.Millisecond) // distinct created_at
	}

	collages, err := db.Collages().ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(collages) != 3 {
		t.Fatalf("expected 3 collages, got %d", len(collages))
	}
	if collages[0].ID != "c2" || collages[2].ID != "c0" {
		t.Fatalf("expected newest first, got %s .. %s", collages[0].ID, collages[2].ID)
	}
}

func TestCollageRepo_DeleteCascadesShare(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "cascade@example.com")

	createTestCollage(t, db, "shared", userID)
	share := &domain.CollageShare{CollageID: "shared", Token: "tok123"}
	if err := db.Shares().Create(ctx, share); err != nil {
		t.Fatalf("create share: %v", err)
	}

	if err := db.Collages().Delete(ctx, "shared"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Shares().GetByToken(ctx, "tok123"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected share to cascade-delete, got %v", err)
	}
}

func TestShareRepo_OneSharePerCollage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, db, "share@example.com")

	createTestCollage(t, db, "c1", userID)
	if err := db.Shares().Create(ctx, &domain.CollageShare{CollageID: "c1", Token: "t1"}); err != nil {
		t.Fatalf("create share: %v", err)
	}

	// The collage_id UNIQUE constraint forbids a second share.
	if err := db.Shares().Create(ctx, &domain.CollageShare{CollageID: "c1", Token: "t2"}); err == nil {
		t.Fatal("expected second share for the same collage to fail")
	}

	got, err := db.Shares().GetByCollage(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByCollage: %v", err)
	}
	if got.Token != "t1" {
		t.Fatalf("expected token t1, got %s", got.Token)
	}

	if err := db.Shares().Delete(ctx, got.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Shares().GetByCollage(ctx, "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
