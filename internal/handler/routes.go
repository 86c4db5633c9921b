package handler

import (
	"net/http"

	"github.com/msomdec/collage-studio/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	assets *service.AssetService,
	picker *service.PickerService,
	collages *service.CollageService,
	limiter *service.TokenBucket,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	assetHandler := NewAssetHandler(assets)
	pickerHandler := NewPickerHandler(picker, assets)
	collageHandler := NewCollageHandler(collages)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /static/app.css", HandleStylesheet)
	mux.Handle("GET /{$}", OptionalAuth(auth, http.HandlerFunc(HandleHome)))
	mux.HandleFunc("GET /login", HandleLoginPage)
	mux.HandleFunc("GET /register", HandleRegisterPage)

	// Auth API. Login and register are rate-limited per remote address.
	mux.Handle("POST /api/auth/login", limited(authHandler.HandleLogin))
	mux.Handle("POST /api/auth/register", limited(authHandler.HandleRegister))
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.HandleMe))

	// Asset library.
	mux.Handle("POST /assets", requireAuth(assetHandler.HandleUpload))
	mux.Handle("GET /api/assets", requireAuth(assetHandler.HandleListAssets))
	mux.Handle("GET /assets/{assetID}/thumb", requireAuth(assetHandler.HandleThumbnail))
	mux.Handle("GET /assets/{assetID}/full", requireAuth(assetHandler.HandleFullImage))
	mux.Handle("POST /assets/{assetID}/delete", requireAuth(assetHandler.HandleDelete))

	// Picker.
	mux.Handle("GET /picker", requireAuth(pickerHandler.HandlePickerPage))
	mux.Handle("GET /picker/feed", requireAuth(pickerHandler.HandleFeed))
	mux.Handle("GET /picker/preview", requireAuth(pickerHandler.HandlePreviewImage))
	mux.Handle("GET /picker/state", requireAuth(pickerHandler.HandleState))
	mux.Handle("POST /picker/select/{assetID}", requireAuth(pickerHandler.HandleSelect))
	mux.Handle("POST /picker/add", requireAuth(pickerHandler.HandleAdd))
	mux.Handle("POST /picker/clear", requireAuth(pickerHandler.HandleClear))
	mux.Handle("POST /picker/save", requireAuth(pickerHandler.HandleSave))

	// Saved collages.
	mux.Handle("GET /dashboard", requireAuth(collageHandler.HandleDashboard))
	mux.Handle("GET /collages/{collageID}/image", requireAuth(collageHandler.HandleImage))
	mux.Handle("POST /collages/{collageID}/delete", requireAuth(collageHandler.HandleDelete))
	mux.Handle("POST /collages/{collageID}/share", requireAuth(collageHandler.HandleShare))
	mux.Handle("POST /collages/{collageID}/share/revoke", requireAuth(collageHandler.HandleRevokeShare))

	// Public share links.
	mux.HandleFunc("GET /shared/{token}", collageHandler.HandleShared)
}
