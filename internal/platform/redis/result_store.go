package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/palace-api/internal/task"
)

// maxUpdateAttempts bounds optimistic-lock retries of a single Update.
const maxUpdateAttempts = 16

// ResultStore keeps job records as JSON strings that expire ttl after their
// last write. The caller owns the client.
type ResultStore struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ task.ResultStore = (*ResultStore)(nil)

// NewResultStore creates a ResultStore. A zero ttl keeps records forever.
func NewResultStore(client *goredis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

// Create stores a new job record.
func (s *ResultStore) Create(ctx context.Context, j *task.Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", j.ID, err)
	}
	if err := s.client.Set(ctx, jobKey(j.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", j.ID, err)
	}
	return nil
}

// Get returns the job record or task.ErrJobNotFound.
func (s *ResultStore) Get(ctx context.Context, id string) (*task.Job, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	return decodeJob(id, data, err)
}

// Update applies fn under WATCH/MULTI, retrying when a concurrent writer
// changed the record first.
func (s *ResultStore) Update(ctx context.Context, id string, fn func(j *task.Job) error) (*task.Job, error) {
	key := jobKey(id)
	var updated *task.Job

	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		j, err := decodeJob(id, data, err)
		if err != nil {
			return err
		}
		if err := fn(j); err != nil {
			return err
		}
		out, err := json.Marshal(j)
		if err != nil {
			return fmt.Errorf("failed to encode job %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = j
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update job %s: too much contention", id)
}

// Delete removes a job record.
func (s *ResultStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, jobKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (s *ResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeJob(id string, data []byte, err error) (*task.Job, error) {
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", task.ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	var j task.Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &j, nil
}
