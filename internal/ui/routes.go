package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prism-console/internal/ui/assets"
)

// MountRoutes registers the console pages on r, which is mounted at /ui.
func MountRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.EnsureCSRFToken)
		r.Use(h.RequireCSRF)

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.CookieHeaderBridge)
			r.Use(authMiddleware)
			r.Get("/", h.Home)
			r.Get("/audit", h.AuditLog)
			r.Get("/audit/export.csv", h.AuditExport)
			r.Get("/roles/hierarchy", h.RoleHierarchy)
		})
	})
}
