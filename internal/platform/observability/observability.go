// Package observability provides the audit-flavored logging helper used by
// handlers for security-relevant operations (overrides, rejected writes,
// failed auth). These log lines complement the transactional audit trail;
// they never replace it.
package observability

import (
	"context"
	"log/slog"

	"masterfile/pkg/attrs"
	"masterfile/pkg/requestcontext"
)

// LogAudit logs one security-relevant event with request correlation. The
// attrList is key/value pairs as passed to slog; actor and reason are
// extracted into stable fields so downstream log queries do not depend on
// caller ordering.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrList ...any) {
	if logger == nil {
		return
	}

	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	if actor := attrs.ExtractString(attrList, "actor"); actor == "" {
		if actor = requestcontext.Actor(ctx); actor != "" {
			attrList = append(attrList, "actor", actor)
		}
	}

	args := append(attrList, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}
