package redis

import (
	"context"
	"fmt"
	"time"

	"kafila-ticketing/internal/logger"

	"github.com/go-redis/redis/v8"
)

const (
	eventKeyPrefix = "razorpay_event:"

	stateProcessing = "processing"
	stateDone       = "done"
)

// Redis remembers webhook event ids so gateway retries short-circuit before
// touching the database. The database transition stays authoritative.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Redis{Client: client, TTL: ttl, Logger: log}
}

func eventKey(eventID string) string {
	return eventKeyPrefix + eventID
}

// Claim reserves eventID for processing. False means another delivery of the
// same event already claimed it. An empty id can't be deduplicated and is
// always claimable.
func (r *Redis) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	ok, err := r.Client.SetNX(ctx, eventKey(eventID), stateProcessing, r.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	if !ok {
		r.Logger.Info("REDIS", fmt.Sprintf("Event %s already claimed", eventID))
	}
	return ok, nil
}

// Complete marks a claimed event as fully processed.
func (r *Redis) Complete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return r.Client.Set(ctx, eventKey(eventID), stateDone, r.TTL).Err()
}

// Release drops a claim so a retried delivery can process the event again.
func (r *Redis) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	val, err := r.Client.Get(ctx, eventKey(eventID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != stateProcessing {
		return nil
	}
	return r.Client.Del(ctx, eventKey(eventID)).Err()
}

// Nop is used when redis is disabled. Every event is claimable.
type Nop struct{}

func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Nop) Complete(context.Context, string) error      { return nil }
func (Nop) Release(context.Context, string) error       { return nil }
