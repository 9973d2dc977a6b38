package services

import (
	"strings"
	"unicode/utf8"
)

// Pure text classifiers that keep the dialogue from deadlocking on the
// oracle or rejecting valid-but-terse answers. They widen acceptance, never
// narrow it.

var ackVocabulary = map[string]bool{
	"ok":        true,
	"okay":      true,
	"ок":        true,
	"thanks":    true,
	"thank you": true,
	"thx":       true,
	"done":      true,
	"got it":    true,
	"great":     true,
	"спасибо":   true,
	"готово":    true,
	"👍":         true,
	"🙏":         true,
	"👌":         true,
}

var platformFragments = []string{
	"instagram",
	"telegram",
	"whatsapp",
	"facebook",
	"tiktok",
	"youtube",
	"linkedin",
	"vk.com",
	"t.me",
}

var domainFragments = []string{
	"http://",
	"https://",
	"www.",
	".com",
	".net",
	".io",
	".ru",
	".kz",
}

// businessNameDenylist holds conversational filler and slot-option
// vocabulary that must not be mistaken for a business identifier. Everything
// else of 3+ characters is accepted: the oracle validates semantics, the
// heuristic only prevents loops on short turns.
var businessNameDenylist = map[string]bool{
	"hi":       true,
	"hello":    true,
	"hey":      true,
	"yes":      true,
	"yeah":     true,
	"yep":      true,
	"nope":     true,
	"maybe":    true,
	"sure":     true,
	"what":     true,
	"why":      true,
	"how":      true,
	"sales":    true,
	"support":  true,
	"bookings": true,
	"привет":   true,
	"здравствуйте": true,
	"да":           true,
	"нет":          true,
	"продажи":      true,
	"поддержка":    true,
	"записи":       true,
}

func isAcknowledgment(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!,")
	if t == "" {
		return false
	}
	if ackVocabulary[t] {
		return true
	}
	// "thanks 👍" style combinations count when every token is an ack.
	for _, f := range strings.Fields(t) {
		if !ackVocabulary[strings.TrimRight(f, ".!,")] {
			return false
		}
	}
	return true
}

func looksLikeLinkOrHandle(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	if strings.Contains(t, "@") {
		return true
	}
	for _, frag := range domainFragments {
		if strings.Contains(t, frag) {
			return true
		}
	}
	for _, frag := range platformFragments {
		if strings.Contains(t, frag) {
			return true
		}
	}
	return false
}

func looksLikeBusinessName(text string) bool {
	t := strings.TrimSpace(text)
	if utf8.RuneCountInString(t) < 3 {
		return false
	}
	return !businessNameDenylist[strings.ToLower(t)]
}
