package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/service"
	"github.com/msomdec/collage-studio/internal/view"
)

// PickerHandler drives the collage picker: the page, the live preview feed,
// and the session operations.
type PickerHandler struct {
	picker *service.PickerService
	assets *service.AssetService
}

// NewPickerHandler creates a new PickerHandler.
func NewPickerHandler(picker *service.PickerService, assets *service.AssetService) *PickerHandler {
	return &PickerHandler{picker: picker, assets: assets}
}

// HandlePickerPage renders the picker with the user's library and the
// current session state.
// GET /picker
func (h *PickerHandler) HandlePickerPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	assets, err := h.assets.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list assets for picker", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	session := h.picker.Session(user.ID)
	view.PickerPage(user.DisplayName, assets, session.Snapshot()).Render(r.Context(), w)
}

// HandleFeed streams preview updates to the browser. Each snapshot patches
// the preview pane; the stream lives until the client disconnects.
// GET /picker/feed
func (h *PickerHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	session := h.picker.Session(user.ID)

	feed := session.Updates()
	defer feed.Close()

	sse := datastar.NewSSE(w, r)

	// Patch the current state first so a reconnecting client catches up.
	sse.PatchElementTempl(
		view.PreviewFragment(session.Snapshot()),
		datastar.WithSelectorID("preview-pane"),
	)

	for {
		select {
		case snap, ok := <-feed.C:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(
				view.PreviewFragment(snap),
				datastar.WithSelectorID("preview-pane"),
			); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// HandleSelect resolves an owned asset and offers it to the session's gate.
// The request returns immediately; the outcome arrives on the feed.
// POST /picker/select/{assetID}
func (h *PickerHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	assetID := r.PathValue("assetID")

	if _, err := h.assets.GetOwned(r.Context(), user.ID, assetID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		case errors.Is(err, domain.ErrUnauthorized):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			slog.Error("get asset for selection", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	// The fetch outlives this request.
	h.picker.Session(user.ID).SelectImage(context.WithoutCancel(r.Context()), assetID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdd re-arms the session with a fresh selection round.
// POST /picker/add
func (h *PickerHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	h.picker.Session(user.ID).Add()
	w.WriteHeader(http.StatusNoContent)
}

// HandleClear empties the working set.
// POST /picker/clear
func (h *PickerHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	h.picker.Session(user.ID).Clear()
	w.WriteHeader(http.StatusNoContent)
}

// HandleSave persists the current preview and reports the settled outcome.
// With no preview it is a no-op.
// POST /picker/save
func (h *PickerHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	settled := h.picker.Session(user.ID).Save(context.WithoutCancel(r.Context()))
	if settled == nil {
		writeJSON(w, http.StatusOK, saveResultDTO{Saved: false})
		return
	}

	res := <-settled
	writeJSON(w, http.StatusOK, saveResultDTO{
		Saved: res.Saved(),
		ID:    res.ID,
		Error: res.Err,
	})
}

// HandlePreviewImage serves the current composite preview bytes.
// GET /picker/preview
func (h *PickerHandler) HandlePreviewImage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	preview := h.picker.Session(user.ID).Preview()
	if preview == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", preview.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(preview.Data)
}

// HandleState returns the observable session state as JSON.
// GET /picker/state
func (h *PickerHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toPickerStateDTO(h.picker.Session(user.ID).Snapshot()))
}
