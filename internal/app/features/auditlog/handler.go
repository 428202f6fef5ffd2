// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	"github.com/dalemusser/exceptionpages/internal/app/store/audit"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventQuery reads audit events. *audit.Store satisfies it.
type EventQuery interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// UserNames resolves actor and user IDs for display. *userstore.Store
// satisfies it.
type UserNames interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

type Handler struct {
	Events EventQuery
	Users  UserNames
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	render RenderFunc
}

// NewHandler constructs an Audit Log feature handler.
func NewHandler(events EventQuery, users UserNames, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Users:  users,
		Log:    logger,
		ErrLog: errLog,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// WithRenderer swaps the template renderer.
func (h *Handler) WithRenderer(fn RenderFunc) *Handler {
	h.render = fn
	return h
}
