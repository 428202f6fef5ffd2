// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Path is where the audit log is mounted.
const Path = "/admin/audit"

// Routes mounts the audit log list. Access is restricted to admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServeList)
	})

	return r
}
