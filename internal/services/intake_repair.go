package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The oracle is instructed to return exactly one JSON object. It may still
// wrap it in prose or code fences, or truncate it. parseOracleReply is the
// in-process half of the repair pipeline; the single repair completion is
// the orchestrator's call to make.

func parseOracleReply(raw string) (StateDelta, error) {
	var d StateDelta

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return d, fmt.Errorf("empty oracle reply")
	}

	if err := json.Unmarshal([]byte(trimmed), &d); err == nil {
		return d, nil
	}

	candidate, ok := extractJSONObject(stripCodeFences(trimmed))
	if !ok {
		return d, fmt.Errorf("no JSON object in oracle reply")
	}
	if err := json.Unmarshal([]byte(candidate), &d); err != nil {
		return d, fmt.Errorf("parse oracle reply: %w", err)
	}
	return d, nil
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return s
}

// extractJSONObject returns the substring from the first '{' to the last
// '}' inclusive.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

const repairSystemPrompt = `You are a formatting fixer. The user gives you broken output that was supposed to be a single JSON object with the keys "reply" (string), "slots" (object of string values), "closed" (boolean) and "closing_sent" (boolean). Re-emit it as exactly one valid JSON object matching that schema. Output nothing but the object.`

func buildRepairInput(failedRaw string) string {
	return "Fix this output:\n" + failedRaw
}
