package services

import "strings"

// StateDelta is the oracle's proposed update for one turn. Slots carries
// only the values the oracle wants to write; the flag fields are pointers so
// an omitted field is distinguishable from an explicit false.
type StateDelta struct {
	Reply       string            `json:"reply"`
	Slots       map[string]string `json:"slots"`
	Closed      *bool             `json:"closed,omitempty"`
	ClosingSent *bool             `json:"closing_sent,omitempty"`
	// Pending is accepted on the wire but never honored; see reconcile.
	Pending string `json:"pending,omitempty"`
}

// reconcile merges the oracle's proposed delta into the authoritative state
// under the monotonic-fill policy: a non-empty proposal wins, an empty or
// absent one never erases existing data. Slot names outside the declared
// order are dropped. Pending is recomputed, not taken from the delta.
func reconcile(cur ConversationState, d StateDelta, schema SlotSchema) ConversationState {
	out := cur.clone()

	for _, name := range schema.Order() {
		if v := strings.TrimSpace(d.Slots[name]); v != "" {
			out.Slots[name] = v
		}
	}

	if d.Closed != nil {
		out.Closed = *d.Closed
	}
	if d.ClosingSent != nil {
		out.ClosingSent = *d.ClosingSent
	}

	out.Pending = inferPending(out.Slots, schema.Order())

	// Closure is only valid once every declared slot holds a value. While a
	// slot is still pending the flags are clamped, whatever the delta said.
	if out.Pending != PendingNone {
		out.Closed = false
		out.ClosingSent = false
	}
	return out
}
