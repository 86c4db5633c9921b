package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/service"
	"github.com/msomdec/collage-studio/internal/view"
)

const maxUploadBody = 12 << 20 // multipart overhead on top of the 10MB asset limit

// AssetHandler handles library uploads and serves asset renditions.
type AssetHandler struct {
	assets *service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// HandleUpload accepts a multipart image upload into the user's library.
// POST /assets
func (h *AssetHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Sniff the content type rather than trusting the client header.
	contentType := http.DetectContentType(data)

	if _, err := h.assets.Upload(r.Context(), user.ID, header.Filename, contentType, data); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.Error("upload asset", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/picker", http.StatusSeeOther)
}

// HandleListAssets returns the user's library as JSON.
// GET /api/assets
func (h *AssetHandler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	assets, err := h.assets.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list assets", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	dtos := make([]assetDTO, 0, len(assets))
	for i := range assets {
		dtos = append(dtos, toAssetDTO(&assets[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": dtos})
}

// HandleThumbnail serves an asset thumbnail through the retrieval facade.
// GET /assets/{assetID}/thumb
func (h *AssetHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	assetID := r.PathValue("assetID")

	if _, err := h.assets.GetOwned(r.Context(), user.ID, assetID); err != nil {
		h.serveError(w, err, "get asset")
		return
	}

	img, err := h.assets.FetchThumbnail(r.Context(), assetID)
	if err != nil {
		h.serveError(w, err, "fetch thumbnail")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(img.Data)
}

// HandleFullImage serves the full-resolution asset bytes.
// GET /assets/{assetID}/full
func (h *AssetHandler) HandleFullImage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	assetID := r.PathValue("assetID")

	if _, err := h.assets.GetOwned(r.Context(), user.ID, assetID); err != nil {
		h.serveError(w, err, "get asset")
		return
	}

	img, err := h.assets.FetchFull(r.Context(), assetID)
	if err != nil {
		h.serveError(w, err, "fetch full image")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Write(img.Data)
}

// HandleDelete removes an asset from the library and refreshes the grid.
// POST /assets/{assetID}/delete
func (h *AssetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	assetID := r.PathValue("assetID")

	if err := h.assets.Delete(r.Context(), user.ID, assetID); err != nil {
		h.serveError(w, err, "delete asset")
		return
	}

	assets, err := h.assets.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list assets after delete", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.AssetGridFragment(assets),
		datastar.WithSelectorID("asset-grid"),
		datastar.WithModeInner(),
	)
}

func (h *AssetHandler) serveError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		slog.Error(op, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
