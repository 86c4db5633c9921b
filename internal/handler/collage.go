package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/service"
	"github.com/msomdec/collage-studio/internal/view"
)

// CollageHandler serves saved collages and their share links.
type CollageHandler struct {
	collages *service.CollageService
}

// NewCollageHandler creates a new CollageHandler.
func NewCollageHandler(collages *service.CollageService) *CollageHandler {
	return &CollageHandler{collages: collages}
}

// HandleDashboard renders the user's saved collages.
// GET /dashboard
func (h *CollageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	collages, err := h.collages.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list collages", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.DashboardPage(user.DisplayName, collages, h.shareTokens(r, collages)).Render(r.Context(), w)
}

// HandleImage serves a saved collage's composite bytes.
// GET /collages/{collageID}/image
func (h *CollageHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	collageID := r.PathValue("collageID")

	data, contentType, err := h.collages.GetFile(r.Context(), user.ID, collageID)
	if err != nil {
		h.serveError(w, err, "get collage file")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// HandleDelete removes a saved collage and redirects back to the dashboard.
// POST /collages/{collageID}/delete
func (h *CollageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	collageID := r.PathValue("collageID")

	if err := h.collages.Delete(r.Context(), user.ID, collageID); err != nil {
		h.serveError(w, err, "delete collage")
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.Redirect("/dashboard")
}

// HandleShare creates (or returns) the public share link for a collage.
// POST /collages/{collageID}/share
func (h *CollageHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	collageID := r.PathValue("collageID")

	if _, err := h.collages.CreateShare(r.Context(), user.ID, collageID); err != nil {
		h.serveError(w, err, "create share")
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.Redirect("/dashboard")
}

// HandleRevokeShare removes the public share link for a collage.
// POST /collages/{collageID}/share/revoke
func (h *CollageHandler) HandleRevokeShare(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	collageID := r.PathValue("collageID")

	if err := h.collages.RevokeShare(r.Context(), user.ID, collageID); err != nil {
		h.serveError(w, err, "revoke share")
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.Redirect("/dashboard")
}

// HandleShared serves a collage by share token. No authentication:
// possession of the token grants read access.
// GET /shared/{token}
func (h *CollageHandler) HandleShared(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	data, contentType, err := h.collages.GetSharedFile(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("get shared collage", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// shareTokens resolves existing share tokens per collage for the dashboard.
func (h *CollageHandler) shareTokens(r *http.Request, collages []domain.Collage) map[string]string {
	user := UserFromContext(r.Context())
	tokens := make(map[string]string)
	for _, c := range collages {
		share, err := h.collages.GetShare(r.Context(), user.ID, c.ID)
		if err != nil {
			continue
		}
		tokens[c.ID] = share.Token
	}
	return tokens
}

func (h *CollageHandler) serveError(w http.ResponseWriter, err error, op string) {
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
