package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/marketplace-reports/internal/document"
)

const (
	keyPrefix = "reports:export:"
	// DefaultRetention is how long export records and their inputs are kept.
	DefaultRetention = 72 * time.Hour
)

// Store persists export records and the appointments queued for them in Redis.
type Store struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewStore constructs a Redis backed store. A non-positive retention falls back to DefaultRetention.
func NewStore(client redis.UniversalClient, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{client: client, retention: retention}
}

func recordKey(id string) string { return keyPrefix + id }

func inputKey(id string) string { return keyPrefix + id + ":input" }

// Insert stores a new record together with its input batch.
func (s *Store) Insert(ctx context.Context, exp Export, input []document.Appointment) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("exports: store not initialised")
	}
	record, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("exports: encode record: %w", err)
	}
	batch, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("exports: encode input: %w", err)
	}
	ok, err := s.client.SetNX(ctx, recordKey(exp.ID), record, s.retention).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("exports: duplicate id %s", exp.ID)
	}
	return s.client.Set(ctx, inputKey(exp.ID), batch, s.retention).Err()
}

// Get loads a single record.
func (s *Store) Get(ctx context.Context, id string) (Export, error) {
	return s.get(ctx, s.client, id)
}

func (s *Store) get(ctx context.Context, c redis.Cmdable, id string) (Export, error) {
	if s == nil || s.client == nil {
		return Export{}, fmt.Errorf("exports: store not initialised")
	}
	raw, err := c.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	var exp Export
	if err := json.Unmarshal(raw, &exp); err != nil {
		return Export{}, fmt.Errorf("exports: decode record: %w", err)
	}
	return exp, nil
}

// Input loads the appointments queued for an export.
func (s *Store) Input(ctx context.Context, id string) ([]document.Appointment, error) {
	raw, err := s.client.Get(ctx, inputKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var list []document.Appointment
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("exports: decode input: %w", err)
	}
	return list, nil
}

// Update applies fn to the stored record under optimistic locking. fn returns the
// replacement record or an error that aborts the update.
func (s *Store) Update(ctx context.Context, id string, fn func(Export) (Export, error)) (Export, error) {
	if s == nil || s.client == nil {
		return Export{}, fmt.Errorf("exports: store not initialised")
	}
	var out Export
	txf := func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		record, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("exports: encode record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recordKey(id), record, s.retention)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}
	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txf, recordKey(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return Export{}, fmt.Errorf("exports: update %s: %w", id, redis.TxFailedErr)
}

// DropInput removes the queued appointments once they are no longer needed.
func (s *Store) DropInput(ctx context.Context, id string) error {
	return s.client.Del(ctx, inputKey(id)).Err()
}
