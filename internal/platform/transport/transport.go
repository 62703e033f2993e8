// Package transport opens the task broker and result store named by the
// task configuration, and builds the registry and worker pool settings
// shared by the server and worker commands.
//
// Supported URLs are redis://, rediss:// and memory://. A memory broker only
// reaches workers running in the same process.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/platform/redis"
	"github.com/phrazzld/palace-api/internal/task"
)

// ErrUnsupportedScheme is returned for a URL with an unknown scheme.
var ErrUnsupportedScheme = errors.New("unsupported transport scheme")

const (
	schemeRedis    = "redis"
	schemeRedisTLS = "rediss"
	schemeMemory   = "memory"
)

// Transport bundles a broker and a result store with the connections
// backing them.
type Transport struct {
	Broker  task.Broker
	Results task.ResultStore

	// InProcess is true when the broker is a memory broker, so jobs are only
	// consumed by a pool in this process.
	InProcess bool

	requeuer interface {
		Requeue(ctx context.Context, queue task.Queue) (int, error)
	}
	clients []*goredis.Client
	logger  *slog.Logger
}

// Open connects the broker and result store of cfg. Redis URLs that are
// equal share one client.
func Open(ctx context.Context, cfg config.TaskConfig, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Transport{logger: logger.With("component", "transport")}

	brokerScheme, err := scheme(cfg.BrokerURL)
	if err != nil {
		return nil, err
	}
	resultScheme, err := scheme(cfg.ResultStoreURL)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]*goredis.Client)
	redisClient := func(rawURL string) (*goredis.Client, error) {
		if c, ok := clients[rawURL]; ok {
			return c, nil
		}
		c, err := redis.NewClient(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		clients[rawURL] = c
		t.clients = append(t.clients, c)
		return c, nil
	}

	switch brokerScheme {
	case schemeMemory:
		t.Broker = task.NewMemoryBroker(task.DefaultMemoryQueueSize, logger)
		t.InProcess = true
	default:
		client, err := redisClient(cfg.BrokerURL)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("failed to connect broker: %w", err)
		}
		broker := redis.NewBroker(client, redis.WithBrokerLogger(logger))
		t.Broker = broker
		t.requeuer = broker
	}

	switch resultScheme {
	case schemeMemory:
		t.Results = task.NewMemoryResultStore(cfg.ResultTTL)
	default:
		client, err := redisClient(cfg.ResultStoreURL)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("failed to connect result store: %w", err)
		}
		t.Results = redis.NewResultStore(client, cfg.ResultTTL)
	}

	t.logger.Info("task transport ready",
		"broker", brokerScheme,
		"result_store", resultScheme)
	return t, nil
}

// RequeueOrphans moves messages left in the processing lists of queues back
// onto their queues. It is a no-op for memory brokers. Only call it when no
// other worker is consuming the queues.
func (t *Transport) RequeueOrphans(ctx context.Context, queues []task.Queue) (int, error) {
	if t.requeuer == nil {
		return 0, nil
	}
	total := 0
	for _, q := range queues {
		n, err := t.requeuer.Requeue(ctx, q)
		if err != nil {
			return total, fmt.Errorf("failed to requeue %s: %w", q, err)
		}
		if n > 0 {
			t.logger.Warn("requeued orphaned messages", "queue", q, "count", n)
		}
		total += n
	}
	return total, nil
}

// Close releases the connections of the transport.
func (t *Transport) Close() error {
	if mb, ok := t.Broker.(*task.MemoryBroker); ok {
		mb.Close()
	}
	var errs []error
	for _, c := range t.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.clients = nil
	return errors.Join(errs...)
}

func scheme(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid transport url: %w", err)
	}
	switch u.Scheme {
	case schemeRedis, schemeRedisTLS, schemeMemory:
		return u.Scheme, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
