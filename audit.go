package sheetauth

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cosmocode/sheetauth/storage/model"
)

// AuditRecorder appends account events to the stats sheet. Delivery is
// best-effort and fire-and-forget: a failed append is logged and never fails
// the operation that triggered it.
type AuditRecorder struct {
	gateway model.TableGateway
	now     func() time.Time
}

// NewAuditRecorder creates an AuditRecorder writing through the passed
// gateway.
func NewAuditRecorder(gateway model.TableGateway) *AuditRecorder {
	return &AuditRecorder{gateway: gateway, now: time.Now}
}

// Record appends one event for the passed login.
func (a *AuditRecorder) Record(ctx context.Context, login string, kind model.AuditEventKind) {
	ev := model.AuditEvent{Login: login, Kind: kind, Time: a.now()}
	if err := a.gateway.AppendAudit(ctx, ev); err != nil {
		log.WithError(err).WithFields(
			log.Fields{
				"login": login,
				"event": kind,
			},
		).Warn("could not record audit event")
	}
}
