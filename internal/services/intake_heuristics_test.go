package services

import "testing"

func TestIsAcknowledgment(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "plain_ok", text: "ok", want: true},
		{name: "thanks_upper", text: "Thanks!", want: true},
		{name: "thank_you", text: "thank you", want: true},
		{name: "thumbs_up", text: "👍", want: true},
		{name: "thanks_with_emoji", text: "thanks 👍", want: true},
		{name: "done_trailing_dot", text: "done.", want: true},
		{name: "substantive_message", text: "actually I also need invoicing", want: false},
		{name: "empty", text: "", want: false},
		{name: "whitespace", text: "   ", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isAcknowledgment(tc.text); got != tc.want {
				t.Fatalf("isAcknowledgment(%q)=%v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestLooksLikeLinkOrHandle(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "at_handle", text: "@smilesdental", want: true},
		{name: "https_url", text: "https://smiles.kz", want: true},
		{name: "bare_domain", text: "smiles.com", want: true},
		{name: "instagram_mention", text: "find us on instagram", want: true},
		{name: "telegram_short_link", text: "t.me/smiles", want: true},
		{name: "plain_sentence", text: "we are a dental clinic", want: false},
		{name: "empty", text: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLikeLinkOrHandle(tc.text); got != tc.want {
				t.Fatalf("looksLikeLinkOrHandle(%q)=%v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestLooksLikeBusinessName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "two_word_name", text: "dental clinic", want: true},
		{name: "short_brand", text: "Zara", want: true},
		{name: "too_short", text: "ab", want: false},
		{name: "greeting", text: "hello", want: false},
		{name: "yes_word", text: "yes", want: false},
		{name: "slot_option_word", text: "sales", want: false},
		{name: "russian_greeting", text: "привет", want: false},
		{name: "unknown_three_chars", text: "xyz", want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLikeBusinessName(tc.text); got != tc.want {
				t.Fatalf("looksLikeBusinessName(%q)=%v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
