// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/planora/internal/app/store/audit"
	"github.com/dalemusser/planora/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mode says where a category's events go.
type Mode uint8

const (
	toLog Mode = 1 << iota
	toDB

	ModeOff  Mode = 0
	ModeLog       = toLog
	ModeDB        = toDB
	ModeAll       = toLog | toDB
)

var modeNames = map[string]Mode{"off": ModeOff, "log": ModeLog, "db": ModeDB, "all": ModeAll}

// ParseMode reads "all", "db", "log" or "off". Blank means "all".
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeAll, nil
	}
	m, ok := modeNames[s]
	if !ok {
		return ModeOff, fmt.Errorf("audit mode %q: want all, db, log or off", s)
	}
	return m, nil
}

// Config is the per-category audit setting as configured. Unparseable
// values fall back to "all".
type Config struct {
	Auth   string
	Boards string
}

// Logger writes audit events to the audit_events collection, to zap, or
// both, per category. A nil *Logger discards everything.
type Logger struct {
	store *audit.Store
	zap   *zap.Logger
	modes map[string]Mode
}

func New(store *audit.Store, zapLog *zap.Logger, cfg Config) *Logger {
	mode := func(s string) Mode {
		m, err := ParseMode(s)
		if err != nil {
			zapLog.Warn("bad audit mode, logging everything", zap.Error(err))
			return ModeAll
		}
		return m
	}
	return &Logger{
		store: store,
		zap:   zapLog,
		modes: map[string]Mode{
			audit.CategoryAuth:   mode(cfg.Auth),
			audit.CategoryBoards: mode(cfg.Boards),
		},
	}
}

func fields(e audit.Event) []zap.Field {
	fs := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	ids := []struct {
		key string
		id  *primitive.ObjectID
	}{{"user_id", e.UserID}, {"actor_id", e.ActorID}, {"board_id", e.BoardID}}
	for _, x := range ids {
		if x.id != nil {
			fs = append(fs, zap.String(x.key, x.id.Hex()))
		}
	}
	if e.FailureReason != "" {
		fs = append(fs, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fs = append(fs, zap.String("detail_"+k, v))
	}
	return fs
}

// Log records e according to its category's mode. Store failures are
// logged, never returned: auditing must not fail the request.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	mode, ok := l.modes[e.Category]
	if !ok {
		mode = ModeAll
	}

	if mode&toLog != 0 {
		if e.Success {
			l.zap.Info("audit event", fields(e)...)
		} else {
			l.zap.Warn("audit event", fields(e)...)
		}
	}
	if mode&toDB != 0 {
		if err := l.store.Log(ctx, e); err != nil {
			l.zap.Error("failed to store audit event", zap.Error(err), zap.String("event_type", e.EventType))
		}
	}
}

func authEvent(r *http.Request, typ string, userID *primitive.ObjectID, reason string, details map[string]string) audit.Event {
	return audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     typ,
		UserID:        userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       reason == "",
		FailureReason: reason,
		Details:       details,
	}
}

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, authEvent(r, audit.EventRegistered, &userID, "",
		map[string]string{"auth_method": authMethod, "email": email}))
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, authEvent(r, audit.EventLoginSuccess, &userID, "",
		map[string]string{"auth_method": authMethod, "email": email}))
}

// LoginFailedUserNotFound records the address that was tried; there is no
// user to attach it to.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedUserNotFound, nil, "user not found",
		map[string]string{"attempted_email": attemptedEmail}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedWrongPassword, &userID, "wrong password",
		map[string]string{"email": email}))
}

func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedUserDisabled, &userID, "user disabled",
		map[string]string{"email": email}))
}

// LoginFailedRateLimit stores the limiter's message as the failure reason.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, authEvent(r, audit.EventLoginFailedRateLimit, nil, reason,
		map[string]string{"attempted_email": email}))
}

// Logout takes the raw token subject, which may be blank or malformed when
// the session had already expired.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var uid *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		uid = &oid
	}
	l.Log(ctx, authEvent(r, audit.EventLogout, uid, "", nil))
}

func boardEvent(r *http.Request, typ string, actorID, boardID, subject primitive.ObjectID, details map[string]string) audit.Event {
	return audit.Event{
		Category:  audit.CategoryBoards,
		EventType: typ,
		ActorID:   &actorID,
		BoardID:   &boardID,
		UserID:    &subject,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
}

func (l *Logger) CollaboratorInvited(ctx context.Context, r *http.Request, actorID, boardID, inviteeID primitive.ObjectID, role string) {
	l.Log(ctx, boardEvent(r, audit.EventCollaboratorInvited, actorID, boardID, inviteeID,
		map[string]string{"role": role}))
}

// InvitationResponded is performed by the invitee, who is both actor and
// subject.
func (l *Logger) InvitationResponded(ctx context.Context, r *http.Request, userID, boardID primitive.ObjectID, status string) {
	l.Log(ctx, boardEvent(r, audit.EventInvitationResponded, userID, boardID, userID,
		map[string]string{"status": status}))
}

func (l *Logger) CollaboratorRemoved(ctx context.Context, r *http.Request, actorID, boardID, removedID primitive.ObjectID) {
	l.Log(ctx, boardEvent(r, audit.EventCollaboratorRemoved, actorID, boardID, removedID, nil))
}

// BoardDeleted keeps the title, since the board itself is gone.
func (l *Logger) BoardDeleted(ctx context.Context, r *http.Request, actorID, boardID primitive.ObjectID, title string) {
	l.Log(ctx, boardEvent(r, audit.EventBoardDeleted, actorID, boardID, actorID,
		map[string]string{"title": title}))
}
