package handler

import (
	_ "embed"
	"net/http"
)

//go:embed app.css
var appCSS []byte

// HandleStylesheet serves the application stylesheet.
// GET /static/app.css
func HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(appCSS)
}
