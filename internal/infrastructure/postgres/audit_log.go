package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Audit action names recorded against auth events.
const (
	AuditRegister        = "register"
	AuditLogin           = "login"
	AuditLoginFailed     = "login_failed"
	AuditLogout          = "logout"
	AuditRefresh         = "refresh"
	AuditRefreshRejected = "refresh_rejected"
	AuditPasswordChange  = "password_change"
)

// AuditLog writes auth events to auth_audit_log. Best effort: failures
// are logged and never fail the request.
type AuditLog struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewAuditLog(pool *pgxpool.Pool, logger *logrus.Logger) *AuditLog {
	return &AuditLog{pool: pool, logger: logger}
}

type AuditEvent struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

func (a *AuditLog) Record(ctx context.Context, ev AuditEvent) {
	if a == nil || a.pool == nil {
		return
	}
	md, _ := json.Marshal(ev.Metadata)
	_, err := a.pool.Exec(ctx, `
		INSERT INTO auth_audit_log (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, ev.UserID, ev.Email, ev.Action, ev.IP, ev.UserAgent, md)
	if err != nil && a.logger != nil {
		a.logger.WithError(err).WithField("action", ev.Action).Warn("audit insert failed")
	}
}
