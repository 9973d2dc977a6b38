package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	stateVersion = 1
	historyLimit = 10

	// PendingNone means every declared slot holds a value.
	PendingNone = "none"

	speakerUser = "user"
	speakerBot  = "bot"
)

// SlotSpec declares one lead attribute the conversation collects.
type SlotSpec struct {
	Name string `yaml:"name"`
	// Question is the fallback prompt for this slot when the oracle returns
	// an empty reply.
	Question string `yaml:"question"`
	// OpenIdentifier marks the slot answered with business names, links or
	// social handles; it is eligible for heuristic pre-fill.
	OpenIdentifier bool `yaml:"open_identifier"`
}

// SlotSchema is the declared, ordered slot set. The engine supports any
// cardinality; the shipped default is the 3-slot revision.
type SlotSchema struct {
	Slots        []SlotSpec `yaml:"slots"`
	ClosingReply string     `yaml:"closing_reply"`
}

func DefaultSlotSchema() SlotSchema {
	return SlotSchema{
		Slots: []SlotSpec{
			{Name: "sector", Question: "What kind of business do you run? A name or a link works too.", OpenIdentifier: true},
			{Name: "service", Question: "What would you like to automate — sales, support, or bookings?"},
			{Name: "volume", Question: "Roughly how many client messages do you get per week?"},
		},
		ClosingReply: "Perfect, that's everything I need. Our team will reach out shortly!",
	}
}

// LoadSlotSchema reads a YAML schema from path, or returns the default when
// path is empty.
func LoadSlotSchema(path string) (SlotSchema, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSlotSchema(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return SlotSchema{}, fmt.Errorf("read slot schema: %w", err)
	}
	var schema SlotSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return SlotSchema{}, fmt.Errorf("parse slot schema: %w", err)
	}
	if err := schema.validate(); err != nil {
		return SlotSchema{}, err
	}
	if strings.TrimSpace(schema.ClosingReply) == "" {
		schema.ClosingReply = DefaultSlotSchema().ClosingReply
	}
	return schema, nil
}

func (s SlotSchema) validate() error {
	if len(s.Slots) == 0 {
		return fmt.Errorf("slot schema declares no slots")
	}
	seen := make(map[string]bool, len(s.Slots))
	for _, spec := range s.Slots {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("slot schema contains an unnamed slot")
		}
		if seen[name] {
			return fmt.Errorf("duplicate slot %q in schema", name)
		}
		seen[name] = true
	}
	return nil
}

// Order returns the declared slot names in asking order.
func (s SlotSchema) Order() []string {
	names := make([]string, 0, len(s.Slots))
	for _, spec := range s.Slots {
		names = append(names, spec.Name)
	}
	return names
}

// OpenIdentifierSlot returns the name of the open-identifier slot, or "".
func (s SlotSchema) OpenIdentifierSlot() string {
	for _, spec := range s.Slots {
		if spec.OpenIdentifier {
			return spec.Name
		}
	}
	return ""
}

func (s SlotSchema) question(slotName string) string {
	for _, spec := range s.Slots {
		if spec.Name == slotName {
			return spec.Question
		}
	}
	return ""
}

// HistoryTurn is one (speaker, text) entry in the oracle context window.
type HistoryTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ConversationState is the persisted per-contact dialogue state.
// Pending is derived and recomputed every turn; it is never trusted from
// external input.
type ConversationState struct {
	Version     int               `json:"version"`
	Slots       map[string]string `json:"slots"`
	Closed      bool              `json:"closed"`
	ClosingSent bool              `json:"closing_sent"`
	Pending     string            `json:"pending"`
	History     []HistoryTurn     `json:"history"`
	Notified    bool              `json:"notified"`
}

func NewConversationState(schema SlotSchema) ConversationState {
	slots := make(map[string]string, len(schema.Slots))
	for _, spec := range schema.Slots {
		slots[spec.Name] = ""
	}
	st := ConversationState{
		Version: stateVersion,
		Slots:   slots,
		History: []HistoryTurn{},
	}
	st.Pending = inferPending(st.Slots, schema.Order())
	return st
}

// ensureSlots backfills slots added by a schema change so a stored state
// from an older declared order keeps working.
func (st *ConversationState) ensureSlots(schema SlotSchema) {
	if st.Slots == nil {
		st.Slots = make(map[string]string, len(schema.Slots))
	}
	for _, spec := range schema.Slots {
		if _, ok := st.Slots[spec.Name]; !ok {
			st.Slots[spec.Name] = ""
		}
	}
}

// inferPending returns the first declared slot with an empty value, or
// PendingNone. This recomputation, not oracle output, owns conversational
// control flow.
func inferPending(slots map[string]string, order []string) string {
	for _, name := range order {
		if strings.TrimSpace(slots[name]) == "" {
			return name
		}
	}
	return PendingNone
}

func (st ConversationState) allFilled(order []string) bool {
	return inferPending(st.Slots, order) == PendingNone
}

func (st *ConversationState) appendHistory(speaker, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	st.History = append(st.History, HistoryTurn{Speaker: speaker, Text: text})
	if len(st.History) > historyLimit {
		st.History = st.History[len(st.History)-historyLimit:]
	}
}

func (st ConversationState) clone() ConversationState {
	out := st
	out.Slots = make(map[string]string, len(st.Slots))
	for k, v := range st.Slots {
		out.Slots[k] = v
	}
	out.History = append([]HistoryTurn(nil), st.History...)
	return out
}
