package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

const intakeSystemPromptTemplate = `You are a friendly sales-qualification assistant chatting with a potential client.
You collect these attributes, in this order: %s.
The attribute to ask about next is %q. Ask about one attribute at a time and never re-ask for attributes that already have a value in the state snapshot.
When every attribute has a value, thank the client, tell them the team will reach out, and set "closed" and "closing_sent" to true.
Keep replies short, warm and conversational. Never mention that you are filling a form.
Respond with exactly one JSON object and nothing else, using this schema:
{"reply": "<your message to the client>", "slots": {"<attribute>": "<value>", ...}, "closed": <boolean>, "closing_sent": <boolean>}
Only include attributes in "slots" that the client's message actually provides.`

// buildTurnPrompt assembles the system prompt and the user content for one
// oracle call. The snapshot already reflects heuristic pre-fill, so the
// oracle is only ever asked about the next unresolved attribute.
func buildTurnPrompt(st ConversationState, schema SlotSchema, userText string) (system string, user string) {
	system = fmt.Sprintf(intakeSystemPromptTemplate,
		strings.Join(schema.Order(), ", "),
		st.Pending,
	)

	snapshot, _ := json.Marshal(st.Slots)

	var b strings.Builder
	b.WriteString("State snapshot: ")
	b.Write(snapshot)
	b.WriteString("\n")
	if len(st.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range st.History {
			b.WriteString(turn.Speaker)
			b.WriteString(": ")
			b.WriteString(turn.Text)
			b.WriteString("\n")
		}
	}
	b.WriteString("Client message: ")
	b.WriteString(userText)

	return system, b.String()
}
