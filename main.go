package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/handler"
	"github.com/msomdec/collage-studio/internal/repository/sqlite"
	"github.com/msomdec/collage-studio/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "collage-studio.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	target := domain.Size{Width: 1600, Height: 1200}
	if v := os.Getenv("COLLAGE_TARGET_SIZE"); v != "" {
		parsed, err := parseSize(v)
		if err != nil {
			slog.Error("invalid COLLAGE_TARGET_SIZE, expected WIDTHxHEIGHT", "value", v, "error", err)
			os.Exit(1)
		}
		target = parsed
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), jwtSecret, bcryptCost)
	librarySource := service.NewLibrarySource(db.Assets(), db.FileStore())
	assetService := service.NewAssetService(db.Assets(), db.FileStore(), librarySource)
	collageService := service.NewCollageService(db.Collages(), db.Shares(), db.FileStore())
	pickerService := service.NewPickerService(assetService, collageService, service.NewGridCompositor(), target)
	defer pickerService.Close()

	// 5 requests/second sustained, bursts of 20, per user or remote address.
	limiter := service.NewTokenBucket(5, 20)
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, assetService, pickerService, collageService, limiter, cookieSecure)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func parseSize(v string) (domain.Size, error) {
	w, h, ok := strings.Cut(v, "x")
	if !ok {
		return domain.Size{}, strconv.ErrSyntax
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return domain.Size{}, err
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return domain.Size{}, err
	}
	if width < 1 || height < 1 {
		return domain.Size{}, strconv.ErrRange
	}
	return domain.Size{Width: width, Height: height}, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
