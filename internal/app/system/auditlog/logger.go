// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/exceptionpages/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for admin actions (settings, content, content types).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// ValidMode reports whether s is a recognised Config value.
func ValidMode(s string) bool {
	switch s {
	case "all", "db", "log", "off":
		return true
	}
	return false
}

// EventStore persists audit events.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via the event store) and structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) request(r *http.Request, e audit.Event) audit.Event {
	e.IP = getClientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		Success:       false,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	}))
}

// LoginFailedWrongPassword logs a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		Success:       false,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	}))
}

// LoginFailedUserDisabled logs a login attempt by a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		Success:       false,
		FailureReason: "user disabled",
		Details:       map[string]string{"email": email},
	}))
}

// Logout logs a logout. userIDStr may be empty when the session had no user.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	e := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Success:   true,
	}
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, l.request(r, e))
}

// --- Admin Events ---

// ExceptionSettingsUpdated logs a save of the exception page settings.
func (l *Logger) ExceptionSettingsUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, values map[string]string) {
	details := make(map[string]string, len(values))
	for k, v := range values {
		details["type_"+k] = v
	}
	l.Log(ctx, l.request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventExceptionSettingsUpdated,
		ActorID:   &actorID,
		Success:   true,
		Details:   details,
	}))
}

func (l *Logger) nodeEvent(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, nodeID int64, contentType, title string) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			"node_id":      strconv.FormatInt(nodeID, 10),
			"content_type": contentType,
			"title":        title,
		},
	}))
}

// NodeCreated logs creation of a node.
func (l *Logger) NodeCreated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, nodeID int64, contentType, title string) {
	l.nodeEvent(ctx, r, audit.EventNodeCreated, actorID, nodeID, contentType, title)
}

// NodeUpdated logs an edit of a node.
func (l *Logger) NodeUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, nodeID int64, contentType, title string) {
	l.nodeEvent(ctx, r, audit.EventNodeUpdated, actorID, nodeID, contentType, title)
}

// NodeDeleted logs deletion of a node.
func (l *Logger) NodeDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, nodeID int64, contentType, title string) {
	l.nodeEvent(ctx, r, audit.EventNodeDeleted, actorID, nodeID, contentType, title)
}

// ContentTypeCreated logs creation of a content type.
func (l *Logger) ContentTypeCreated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, name string, onlyOne bool) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContentTypeCreated,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"name": name, "only_one": strconv.FormatBool(onlyOne)},
	}))
}

// ContentTypeUpdated logs a change to a content type's only-one flag.
func (l *Logger) ContentTypeUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, name string, onlyOne bool) {
	l.Log(ctx, l.request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContentTypeUpdated,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"name": name, "only_one": strconv.FormatBool(onlyOne)},
	}))
}
