package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/leadflow-backend/internal/clients/openai"
	"github.com/yungbote/leadflow-backend/internal/clients/redis"
	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

// Fixed in-character replies for every degraded path. No technical error
// text ever reaches the end user.
const (
	replyEmptyMessage = "I didn't catch a message there — could you send that again?"
	replyCouldNotHear = "Sorry, I couldn't make out that voice note. Could you type it instead?"
	replyResend       = "Sorry, I lost the thread for a second — could you resend that in one line?"
	replyClosingAck   = "Anytime! We'll be in touch soon 🙌"
)

// TurnInput is the inbound turn contract: a contact plus either text or an
// audio reference.
type TurnInput struct {
	ContactID string
	Text      string
	AudioURL  string
}

type TurnResult struct {
	Reply string
}

// IntakeService runs one request/response cycle of the lead-qualification
// dialogue. All state crosses the boundary through the conversation store;
// there is no in-process cross-request mutable state.
type IntakeService interface {
	HandleTurn(ctx context.Context, in TurnInput) (TurnResult, error)
}

type intakeService struct {
	log      *logger.Logger
	store    redis.ConversationStore
	oracle   openai.Client
	notifier LeadNotifier
	schema   SlotSchema
	ttl      time.Duration
	langHint string

	// Collapses duplicate webhook deliveries of the same message into one
	// turn execution.
	group singleflight.Group
}

func NewIntakeService(
	log *logger.Logger,
	store redis.ConversationStore,
	oracle openai.Client,
	notifier LeadNotifier,
	schema SlotSchema,
	ttl time.Duration,
	langHint string,
) IntakeService {
	return &intakeService{
		log:      log.With("service", "IntakeService"),
		store:    store,
		oracle:   oracle,
		notifier: notifier,
		schema:   schema,
		ttl:      ttl,
		langHint: langHint,
	}
}

func (s *intakeService) HandleTurn(ctx context.Context, in TurnInput) (TurnResult, error) {
	contactID := strings.TrimSpace(in.ContactID)
	if contactID == "" {
		return TurnResult{}, fmt.Errorf("contact id required")
	}

	key := contactID + "|" + turnDigest(in.Text, in.AudioURL)
	reply, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.runTurn(ctx, contactID, in), nil
	})
	if err != nil {
		return TurnResult{}, err
	}
	return TurnResult{Reply: reply.(string)}, nil
}

func turnDigest(text, audioURL string) string {
	h := sha1.Sum([]byte(text + "\x00" + audioURL))
	return hex.EncodeToString(h[:])
}

func (s *intakeService) runTurn(ctx context.Context, contactID string, in TurnInput) string {
	log := s.log.With("contact_id", contactID)

	userText := strings.TrimSpace(in.Text)
	audioURL := strings.TrimSpace(in.AudioURL)
	if userText == "" && audioURL == "" {
		return replyEmptyMessage
	}

	if userText == "" {
		transcript, err := s.transcribe(ctx, audioURL)
		if err != nil || transcript == "" {
			log.Warn("Transcription failed", "error", err)
			return replyCouldNotHear
		}
		userText = transcript
	}

	st := s.loadState(ctx, log, contactID)
	order := s.schema.Order()
	pending := inferPending(st.Slots, order)

	// Closed leads answer acknowledgments without consulting the oracle.
	if st.Closed && st.ClosingSent && isAcknowledgment(userText) {
		st.appendHistory(speakerUser, userText)
		st.appendHistory(speakerBot, replyClosingAck)
		st.Pending = pending
		s.persist(ctx, log, contactID, st)
		return replyClosingAck
	}

	// Heuristic pre-fill of the open-identifier slot, so the oracle sees a
	// snapshot that already reflects it and is asked only about the next slot.
	if open := s.schema.OpenIdentifierSlot(); open != "" && pending == open {
		if looksLikeLinkOrHandle(userText) || looksLikeBusinessName(userText) {
			st.Slots[open] = userText
			pending = inferPending(st.Slots, order)
		}
	}
	st.Pending = pending

	system, user := buildTurnPrompt(st, s.schema, userText)
	rawReply, err := s.oracle.Complete(ctx, system, user)
	if err != nil {
		log.Warn("Oracle call failed", "error", err)
		return replyResend
	}

	delta, perr := parseOracleReply(rawReply)
	if perr != nil {
		// Exactly one repair call per turn, never more.
		repaired, rerr := s.oracle.Complete(ctx, repairSystemPrompt, buildRepairInput(rawReply))
		if rerr != nil {
			log.Warn("Oracle repair call failed", "error", rerr)
			return replyResend
		}
		delta, perr = parseOracleReply(repaired)
		if perr != nil {
			// Degrade with zero state mutation: the pre-turn state stays
			// persisted untouched and the caller may safely resend.
			log.Warn("Oracle reply unrecoverable", "error", perr)
			return replyResend
		}
	}

	st = reconcile(st, delta, s.schema)
	reply := strings.TrimSpace(delta.Reply)

	if st.Pending == PendingNone {
		// All slots filled: closure is forced even when the oracle withheld
		// it, because pending inference owns control flow.
		if !st.Closed || !st.ClosingSent {
			st.Closed = true
			st.ClosingSent = true
		}
		if reply == "" {
			reply = s.schema.ClosingReply
		}
	} else if reply == "" {
		reply = s.schema.question(st.Pending)
		if reply == "" {
			reply = fmt.Sprintf("Could you tell me about your %s?", st.Pending)
		}
	}

	st.appendHistory(speakerUser, userText)
	st.appendHistory(speakerBot, reply)

	// Write-ahead notified flag: persisted before the delivery attempt so a
	// crash or retry can never double-send.
	firstCompletion := leadComplete(st, order) && !st.Notified
	if firstCompletion {
		st.Notified = true
	}

	s.persist(ctx, log, contactID, st)

	if firstCompletion {
		s.notifier.Deliver(ctx, contactID, st)
	}

	return reply
}

func (s *intakeService) transcribe(ctx context.Context, audioURL string) (string, error) {
	audio, err := s.oracle.FetchAudio(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	transcript, err := s.oracle.Transcribe(ctx, audio, s.langHint)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(transcript), nil
}

// loadState fetches the persisted state or synthesizes the default. A store
// failure degrades to a fresh state for this turn: the conversation restarts
// instead of the request failing.
func (s *intakeService) loadState(ctx context.Context, log *logger.Logger, contactID string) ConversationState {
	raw, found, err := s.store.Get(ctx, contactID)
	if err != nil {
		log.Warn("Conversation store unavailable, using fresh state", "error", err)
		return NewConversationState(s.schema)
	}
	if !found {
		return NewConversationState(s.schema)
	}
	var st ConversationState
	if err := json.Unmarshal(raw, &st); err != nil {
		log.Warn("Stored conversation state unreadable, using fresh state", "error", err)
		return NewConversationState(s.schema)
	}
	st.ensureSlots(s.schema)
	return st
}

func (s *intakeService) persist(ctx context.Context, log *logger.Logger, contactID string, st ConversationState) {
	raw, err := json.Marshal(st)
	if err != nil {
		log.Error("Marshal conversation state failed", "error", err)
		return
	}
	if err := s.store.Set(ctx, contactID, raw, s.ttl); err != nil {
		log.Warn("Persist conversation state failed", "error", err)
	}
}
