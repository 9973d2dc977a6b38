package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

const keyPrefix = "lead:conv:"

// ConversationStore is the TTL-bound key-value persistence for per-contact
// conversation state. Absence is not an error: Get reports found=false.
type ConversationStore interface {
	Get(ctx context.Context, contactID string) (raw []byte, found bool, err error)
	Set(ctx context.Context, contactID string, raw []byte, ttl time.Duration) error
	Close() error
}

type conversationStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewConversationStore(log *logger.Logger) (ConversationStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	password := os.Getenv("REDIS_PASSWORD")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &conversationStore{
		log: log.With("service", "ConversationStore"),
		rdb: rdb,
	}, nil
}

func (s *conversationStore) Get(ctx context.Context, contactID string) ([]byte, bool, error) {
	if s == nil || s.rdb == nil {
		return nil, false, fmt.Errorf("conversation store not initialized")
	}
	raw, err := s.rdb.Get(ctx, keyPrefix+contactID).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return raw, true, nil
}

func (s *conversationStore) Set(ctx context.Context, contactID string, raw []byte, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("conversation store not initialized")
	}
	if err := s.rdb.Set(ctx, keyPrefix+contactID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *conversationStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
