// Package view renders HTML as templ components. Components are built with
// templ.ComponentFunc so fragments can be patched over SSE by the handler
// layer.
package view

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/service"
)

func component(render func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return render(w)
	})
}

// Layout wraps page content with the shared chrome.
func Layout(title, displayName string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s — Collage Studio</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<nav class="topnav"><a href="/" class="brand">Collage Studio</a>`, html.EscapeString(title)); err != nil {
			return err
		}
		if displayName != "" {
			fmt.Fprintf(w, `<span class="nav-user">%s</span>
<a href="/picker">Picker</a> <a href="/dashboard">Dashboard</a>
<button data-on-click="@post('/api/auth/logout')">Log out</button>`, html.EscapeString(displayName))
		} else {
			fmt.Fprint(w, `<a href="/login">Log in</a> <a href="/register">Register</a>`)
		}
		if _, err := fmt.Fprint(w, `</nav><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</main></body></html>`)
		return err
	})
}

// HomePage renders the landing page.
func HomePage(displayName string) templ.Component {
	body := component(func(w io.Writer) error {
		_, err := fmt.Fprint(w, `<section class="hero">
<h1>Build a collage from your photos</h1>
<p>Pick up to 6 images, watch the composite update live, save it when it looks right.</p>
<p><a class="cta" href="/picker">Open the picker</a></p>
</section>`)
		return err
	})
	return Layout("Home", displayName, body)
}

// LoginPage renders the login form.
func LoginPage() templ.Component {
	body := component(func(w io.Writer) error {
		_, err := fmt.Fprint(w, `<form class="auth-form" data-signals="{email: '', password: ''}">
<h1>Log in</h1>
<label>Email <input type="email" data-bind-email></label>
<label>Password <input type="password" data-bind-password></label>
<button data-on-click="@post('/api/auth/login')">Log in</button>
<p>No account? <a href="/register">Register</a></p>
</form>`)
		return err
	})
	return Layout("Log in", "", body)
}

// RegisterPage renders the registration form.
func RegisterPage() templ.Component {
	body := component(func(w io.Writer) error {
		_, err := fmt.Fprint(w, `<form class="auth-form" data-signals="{email: '', displayName: '', password: '', confirmPassword: ''}">
<h1>Register</h1>
<label>Email <input type="email" data-bind-email></label>
<label>Display name <input type="text" data-bind-displayName></label>
<label>Password <input type="password" data-bind-password></label>
<label>Confirm password <input type="password" data-bind-confirmPassword></label>
<button data-on-click="@post('/api/auth/register')">Create account</button>
</form>`)
		return err
	})
	return Layout("Register", "", body)
}

// PickerPage renders the collage picker: asset grid, live preview pane, and
// session controls. The preview pane subscribes to the SSE change feed on
// load.
func PickerPage(displayName string, assets []domain.Asset, snap service.Snapshot) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprint(w, `<div class="picker" data-on-load="@get('/picker/feed')">
<section class="library">
<h2>Your library</h2>
<form class="upload" enctype="multipart/form-data" method="post" action="/assets">
<input type="file" name="image" accept="image/jpeg,image/png">
<button type="submit">Upload</button>
</form>
<div id="asset-grid" class="asset-grid">`); err != nil {
			return err
		}
		if err := AssetGridFragment(assets).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, `</div></section><section class="workbench">`); err != nil {
			return err
		}
		if err := PreviewFragment(snap).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `<div class="controls">
<button data-on-click="@post('/picker/add')">New selection round</button>
<button data-on-click="@post('/picker/clear')">Clear</button>
<button data-on-click="@post('/picker/save')">Save collage</button>
</div></section></div>`)
		return err
	})
	return Layout("Picker", displayName, body)
}

// AssetGridFragment renders the selectable thumbnails.
func AssetGridFragment(assets []domain.Asset) templ.Component {
	return component(func(w io.Writer) error {
		if len(assets) == 0 {
			_, err := fmt.Fprint(w, `<p class="empty">No images yet. Upload a few to get started.</p>`)
			return err
		}
		for _, a := range assets {
			if _, err := fmt.Fprintf(w,
				`<button class="asset" data-on-click="@post('/picker/select/%s')" title="%s"><img src="/assets/%s/thumb" alt="%s"></button>`,
				a.ID, html.EscapeString(a.Filename), a.ID, html.EscapeString(a.Filename)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PreviewFragment renders the composite preview, the count badge, and the
// outcome of the last save. It is the target of SSE patches from the picker
// feed.
func PreviewFragment(snap service.Snapshot) templ.Component {
	return component(func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="preview-pane"><h2>Preview <span class="badge">%d</span></h2>`, snap.Count); err != nil {
			return err
		}
		if snap.Preview != nil {
			// Cache-bust on count so the browser refetches each derivation.
			if _, err := fmt.Fprintf(w, `<img class="preview" src="/picker/preview?n=%d" alt="collage preview">`, snap.Count); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprint(w, `<p class="empty">Select images to see a preview.</p>`); err != nil {
				return err
			}
		}
		if snap.LastSave != nil {
			if snap.LastSave.Saved() {
				fmt.Fprintf(w, `<p class="save-ok">Saved as %s</p>`, html.EscapeString(snap.LastSave.ID))
			} else {
				fmt.Fprintf(w, `<p class="save-err">Save failed: %s</p>`, html.EscapeString(snap.LastSave.Err))
			}
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
}

// DashboardPage lists the user's saved collages.
func DashboardPage(displayName string, collages []domain.Collage, shareTokens map[string]string) templ.Component {
	body := component(func(w io.Writer) error {
		if _, err := fmt.Fprint(w, `<h1>Saved collages</h1><div id="collage-list" class="collage-list">`); err != nil {
			return err
		}
		if len(collages) == 0 {
			if _, err := fmt.Fprint(w, `<p class="empty">Nothing saved yet.</p>`); err != nil {
				return err
			}
		}
		for _, c := range collages {
			if _, err := fmt.Fprintf(w, `<div class="collage-card" id="collage-%s">
<img src="/collages/%s/image" alt="saved collage">
<p>%d images · %s</p>`,
				c.ID, c.ID, c.ImageCount, c.CreatedAt.Format("Jan 2, 2006")); err != nil {
				return err
			}
			if token, ok := shareTokens[c.ID]; ok {
				fmt.Fprintf(w, `<p class="share-link"><a href="/shared/%s">Public link</a>
<button data-on-click="@post('/collages/%s/share/revoke')">Revoke</button></p>`, token, c.ID)
			} else {
				fmt.Fprintf(w, `<button data-on-click="@post('/collages/%s/share')">Share</button>`, c.ID)
			}
			if _, err := fmt.Fprintf(w, `<button data-on-click="@post('/collages/%s/delete')">Delete</button></div>`, c.ID); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
	return Layout("Dashboard", displayName, body)
}
