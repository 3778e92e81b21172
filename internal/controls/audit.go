package controls

import (
	"encoding/json"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/google/uuid"
)

// AuditEvent is the structured record emitted at every decision point. The
// sink is fire-and-forget; emitting never affects control flow.
type AuditEvent struct {
	EventID   string            `json:"event_id"`
	Timestamp string            `json:"timestamp"`
	Operation string            `json:"operation"`
	Target    string            `json:"target"`
	Caller    string            `json:"caller,omitempty"`
	Outcome   string            `json:"outcome"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Auditor writes audit events to the log sink.
type Auditor struct{}

// NewAuditor creates an audit sink backed by the process logger.
func NewAuditor() *Auditor {
	return &Auditor{}
}

// Emit records one audit event. Marshal failures are swallowed after a
// warning; audit must never fail a command.
func (a *Auditor) Emit(operation, target, caller, outcome string, detail map[string]string) {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Operation: operation,
		Target:    target,
		Caller:    caller,
		Outcome:   outcome,
		Detail:    detail,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logx.Warn("Failed to marshal audit event for %s: %v", operation, err)
		return
	}
	logx.Info("AUDIT: %s", string(data))
}
