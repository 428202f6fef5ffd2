// internal/app/features/contenttypes/routes.go
package contenttypes

import (
	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// AdminPath is where the content types admin is mounted.
const AdminPath = "/admin/types"

// Routes returns the admin-only content types router.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole("admin"))
	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleNew)
	r.Post("/{name}/onlyone", h.HandleOnlyOne)
	return r
}
