package handler

import (
	"net/http"

	"github.com/msomdec/collage-studio/internal/view"
)

// HandleHome renders the home page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	displayName := ""
	if user := UserFromContext(r.Context()); user != nil {
		displayName = user.DisplayName
	}
	view.HomePage(displayName).Render(r.Context(), w)
}

// HandleLoginPage renders the login form.
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage().Render(r.Context(), w)
}

// HandleRegisterPage renders the registration form.
func HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	view.RegisterPage().Render(r.Context(), w)
}
