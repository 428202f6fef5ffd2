// internal/app/features/nodes/routes.go
package nodes

import (
	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// AdminPath is where the content admin is mounted.
const AdminPath = "/admin/content"

// ViewRoutes serves canonical node pages. Mount at /node.
func ViewRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.ServeNode)
	return r
}

// AdminRoutes serves the content admin. Mount at AdminPath.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole("admin", "editor"))
	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleNew)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}/edit", h.HandleEdit)
	r.With(sm.RequireRole("admin")).Post("/{id}/delete", h.HandleDelete)
	return r
}
