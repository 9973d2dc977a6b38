package services

import "testing"

func TestParseOracleReply(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantErr   bool
		wantReply string
		wantSlot  string
	}{
		{
			name:      "clean_object",
			raw:       `{"reply":"Got it!","slots":{"sector":"cafe"},"closed":false,"closing_sent":false}`,
			wantReply: "Got it!",
			wantSlot:  "cafe",
		},
		{
			name:      "fenced_object",
			raw:       "```json\n{\"reply\":\"Got it!\",\"slots\":{\"sector\":\"cafe\"}}\n```",
			wantReply: "Got it!",
			wantSlot:  "cafe",
		},
		{
			name:      "prose_wrapped_object",
			raw:       `Sure, here is the result: {"reply":"Got it!","slots":{"sector":"cafe"}} hope that helps`,
			wantReply: "Got it!",
			wantSlot:  "cafe",
		},
		{
			name:    "pure_prose",
			raw:     "I think the client runs a cafe and wants bookings automated.",
			wantErr: true,
		},
		{
			name:    "truncated_object",
			raw:     `{"reply":"Got it!","slots":{"sector":`,
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := parseOracleReply(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", d)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOracleReply: %v", err)
			}
			if d.Reply != tc.wantReply {
				t.Fatalf("reply=%q, want %q", d.Reply, tc.wantReply)
			}
			if d.Slots["sector"] != tc.wantSlot {
				t.Fatalf("sector=%q, want %q", d.Slots["sector"], tc.wantSlot)
			}
		})
	}
}

func TestParseOracleReplyExplicitFlags(t *testing.T) {
	d, err := parseOracleReply(`{"reply":"done","closed":true,"closing_sent":false}`)
	if err != nil {
		t.Fatalf("parseOracleReply: %v", err)
	}
	if d.Closed == nil || !*d.Closed {
		t.Fatal("closed=true not parsed as explicit")
	}
	if d.ClosingSent == nil || *d.ClosingSent {
		t.Fatal("closing_sent=false not parsed as explicit")
	}

	d, err = parseOracleReply(`{"reply":"done"}`)
	if err != nil {
		t.Fatalf("parseOracleReply: %v", err)
	}
	if d.Closed != nil || d.ClosingSent != nil {
		t.Fatal("omitted flags should stay nil")
	}
}

func TestExtractJSONObject(t *testing.T) {
	if _, ok := extractJSONObject("no braces here"); ok {
		t.Fatal("expected no object")
	}
	got, ok := extractJSONObject(`prefix {"a":1} suffix`)
	if !ok || got != `{"a":1}` {
		t.Fatalf("extractJSONObject=%q ok=%v", got, ok)
	}
}
