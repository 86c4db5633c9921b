package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/repository/sqlite"
	"github.com/msomdec/collage-studio/internal/service"
)

func newTestCollageService(t *testing.T) (*service.CollageService, int64) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), "test-secret-key-for-unit-tests", 4)
	user, err := auth.Register(context.Background(), "owner@example.com", "Owner", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	return service.NewCollageService(db.Collages(), db.Shares(), db.FileStore()), user.ID
}

func testComposite() domain.Image {
	return domain.Image{ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestCollageService_WriteAndGetFile(t *testing.T) {
	svc, userID := newTestCollageService(t)
	ctx := context.Background()

	id, err := svc.Write(ctx, userID, testComposite(), 3)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if id == "" {
		t.Fatal("expected collage id")
	}

	data, contentType, err := svc.GetFile(ctx, userID, id)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected bytes %q", data)
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %s", contentType)
	}

	collages, err := svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(collages) != 1 || collages[0].ImageCount != 3 {
		t.Fatalf("expected one collage with 3 images, got %v", collages)
	}
}

func TestCollageService_GetFileChecksOwnership(t *testing.T) {
	svc, userID := newTestCollageService(t)
	ctx := context.Background()

	id, err := svc.Write(ctx, userID, testComposite(), 1)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, _, err := svc.GetFile(ctx, userID+1, id); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCollageService_DeleteRemovesFileAndRecord(t *testing.T) {
	svc, userID := newTestCollageService(t)
	ctx := context.Background()

	id, err := svc.Write(ctx, userID, testComposite(), 2)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := svc.Delete(ctx, userID, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := svc.GetFile(ctx, userID, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCollageService_ShareLifecycle(t *testing.T) {
	svc, userID := newTestCollageService(t)
	ctx := context.Background()

	id, err := svc.Write(ctx, userID, testComposite(), 2)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	share, err := svc.CreateShare(ctx, userID, id)
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if share.Token == "" {
		t.Fatal("expected share token")
	}

	// Creating again returns the same share.
	again, err := svc.CreateShare(ctx, userID, id)
	if err != nil {
		t.Fatalf("second CreateShare: %v", err)
	}
	if again.Token != share.Token {
		t.Fatalf("expected idempotent share, got new token %s", again.Token)
	}

	// The token grants unauthenticated access to the bytes.
	data, _, err := svc.GetSharedFile(ctx, share.Token)
	if err != nil {
		t.Fatalf("GetSharedFile: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected shared bytes %q", data)
	}

	if err := svc.RevokeShare(ctx, userID, id); err != nil {
		t.Fatalf("RevokeShare: %v", err)
	}
	if _, _, err := svc.GetSharedFile(ctx, share.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
}

func TestCollageService_ShareChecksOwnership(t *testing.T) {
	svc, userID := newTestCollageService(t)
	ctx := context.Background()

	id, err := svc.Write(ctx, userID, testComposite(), 1)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := svc.CreateShare(ctx, userID+1, id); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
