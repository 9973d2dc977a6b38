package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/leadflow-backend/internal/clients/waba"
	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

// leadComplete is the completion predicate: closure decided, closing reply
// delivered, and every declared slot filled.
func leadComplete(st ConversationState, order []string) bool {
	return st.Closed && st.ClosingSent && st.allFilled(order)
}

// LeadNotifier delivers the one-time admin notification for a completed
// lead. Callers flip and persist the notified flag BEFORE calling Deliver;
// the guarantee is at-most-once, so a failed delivery is logged and lost.
type LeadNotifier interface {
	Deliver(ctx context.Context, contactID string, st ConversationState)
}

type leadNotifier struct {
	log         *logger.Logger
	sender      waba.Sender
	adminTarget string
	schema      SlotSchema
}

func NewLeadNotifier(log *logger.Logger, sender waba.Sender, adminTarget string, schema SlotSchema) LeadNotifier {
	return &leadNotifier{
		log:         log.With("service", "LeadNotifier"),
		sender:      sender,
		adminTarget: adminTarget,
		schema:      schema,
	}
}

func (n *leadNotifier) Deliver(ctx context.Context, contactID string, st ConversationState) {
	if n == nil || n.sender == nil || strings.TrimSpace(n.adminTarget) == "" {
		return
	}
	summary := buildLeadSummary(contactID, st, n.schema)
	if err := n.sender.Send(ctx, n.adminTarget, summary); err != nil {
		n.log.Warn("Lead notification delivery failed", "contact_id", contactID, "error", err)
		return
	}
	n.log.Info("Lead notification delivered", "contact_id", contactID)
}

func buildLeadSummary(contactID string, st ConversationState, schema SlotSchema) string {
	var b strings.Builder
	b.WriteString("New qualified lead 🎯\n")
	b.WriteString(fmt.Sprintf("Contact: %s\n", contactID))
	for _, name := range schema.Order() {
		b.WriteString(fmt.Sprintf("%s: %s\n", name, st.Slots[name]))
	}
	// The 3-slot schema synthesizes the objective marker at closure.
	if _, declared := st.Slots["objective"]; !declared {
		b.WriteString("objective: qualified\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
