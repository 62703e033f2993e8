package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/phrazzld/palace-api/internal/task"
)

// DefaultBlockTimeout bounds a single BLMOVE call so that claims notice
// cancellation promptly. Redis rounds sub-second values up to one second.
const DefaultBlockTimeout = time.Second

// wireMessage is the msgpack encoding of a task.Message.
type wireMessage struct {
	ID         string    `msgpack:"id"`
	Task       string    `msgpack:"task"`
	Args       [][]byte  `msgpack:"args"`
	EnqueuedAt time.Time `msgpack:"enqueued_at"`
}

func encodeMessage(msg task.Message) ([]byte, error) {
	w := wireMessage{
		ID:         msg.ID,
		Task:       string(msg.Task),
		Args:       make([][]byte, len(msg.Args)),
		EnqueuedAt: msg.EnqueuedAt,
	}
	for i, arg := range msg.Args {
		w.Args[i] = arg
	}
	return msgpack.Marshal(&w)
}

func decodeMessage(data []byte) (task.Message, error) {
	var w wireMessage
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return task.Message{}, err
	}
	msg := task.Message{
		ID:         w.ID,
		Task:       task.Name(w.Task),
		Args:       make(task.Args, len(w.Args)),
		EnqueuedAt: w.EnqueuedAt,
	}
	for i, arg := range w.Args {
		msg.Args[i] = arg
	}
	return msg, nil
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithBlockTimeout sets the BLMOVE timeout of a single claim attempt.
func WithBlockTimeout(d time.Duration) BrokerOption {
	return func(b *Broker) { b.blockTimeout = d }
}

// WithBrokerLogger sets a custom logger.
func WithBrokerLogger(l *slog.Logger) BrokerOption {
	return func(b *Broker) { b.logger = l }
}

// Broker is a reliable list-based task.Broker. The caller owns the client.
type Broker struct {
	client       goredis.Cmdable
	blockTimeout time.Duration
	logger       *slog.Logger
}

var _ task.Broker = (*Broker)(nil)

// NewBroker creates a Broker on client.
func NewBroker(client goredis.Cmdable, opts ...BrokerOption) *Broker {
	b := &Broker{
		client:       client,
		blockTimeout: DefaultBlockTimeout,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	b.logger = b.logger.With("component", "redis_broker")
	return b
}

// Push appends msg to the queue.
func (b *Broker) Push(ctx context.Context, queue task.Queue, msg task.Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
	}
	if err := b.client.LPush(ctx, queueKey(queue), data).Err(); err != nil {
		return fmt.Errorf("failed to push message %s to %s: %w", msg.ID, queue, err)
	}
	return nil
}

// Claim moves the oldest message of queue into its processing list. It
// blocks until a message arrives or ctx is done.
func (b *Broker) Claim(ctx context.Context, queue task.Queue) (*task.Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := b.client.BLMove(ctx, queueKey(queue), processingKey(queue), "RIGHT", "LEFT", b.blockTimeout).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to claim from %s: %w", queue, err)
		}

		msg, err := decodeMessage([]byte(raw))
		if err != nil {
			b.logger.Error("dropping undecodable message",
				"queue", queue,
				"error", err)
			if dlErr := b.deadLetter(ctx, queue, raw); dlErr != nil {
				return nil, dlErr
			}
			continue
		}

		return &task.Delivery{Queue: queue, Message: msg, Token: raw}, nil
	}
}

// Ack removes a delivery from the processing list.
func (b *Broker) Ack(ctx context.Context, d *task.Delivery) error {
	if err := b.client.LRem(ctx, processingKey(d.Queue), 1, d.Token).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", d.Message.ID, err)
	}
	return nil
}

// Reject moves a delivery from the processing list to the dead-letter list.
func (b *Broker) Reject(ctx context.Context, d *task.Delivery, cause error) error {
	if err := b.deadLetter(ctx, d.Queue, d.Token); err != nil {
		return err
	}
	b.logger.Debug("message dead-lettered",
		"queue", d.Queue,
		"job_id", d.Message.ID,
		"error", cause)
	return nil
}

func (b *Broker) deadLetter(ctx context.Context, queue task.Queue, raw string) error {
	_, err := b.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(queue), 1, raw)
		pipe.LPush(ctx, deadKey(queue), raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to dead-letter message on %s: %w", queue, err)
	}
	return nil
}

// Requeue moves every message left in the processing list of queue back to
// the head of the queue, oldest first. It returns the number of messages
// moved. Only call it while no worker is serving queue.
func (b *Broker) Requeue(ctx context.Context, queue task.Queue) (int, error) {
	moved := 0
	for {
		err := b.client.LMove(ctx, processingKey(queue), queueKey(queue), "LEFT", "RIGHT").Err()
		if errors.Is(err, goredis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to requeue from %s: %w", queue, err)
		}
		moved++
	}
}

// Len returns the number of pending messages on queue.
func (b *Broker) Len(ctx context.Context, queue task.Queue) (int64, error) {
	return b.client.LLen(ctx, queueKey(queue)).Result()
}

// DeadLetters returns the dead-lettered messages of queue, newest first.
func (b *Broker) DeadLetters(ctx context.Context, queue task.Queue) ([]task.Message, error) {
	raws, err := b.client.LRange(ctx, deadKey(queue), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters of %s: %w", queue, err)
	}
	msgs := make([]task.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := decodeMessage([]byte(raw))
		if err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Ping verifies the Redis connection is alive.
func (b *Broker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
