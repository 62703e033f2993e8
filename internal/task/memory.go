package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMemoryQueueSize is the per-queue buffer of a MemoryBroker.
const DefaultMemoryQueueSize = 1024

// MemoryBroker is an in-process Broker backed by buffered channels, one per
// queue. It is used in tests and for memory:// URLs in local development.
type MemoryBroker struct {
	mu       sync.Mutex
	size     int
	queues   map[Queue]chan Message
	inflight map[string]Delivery
	dead     map[Queue][]Message
	closed   bool
	logger   *slog.Logger
}

var _ Broker = (*MemoryBroker)(nil)

// NewMemoryBroker creates a broker whose queues buffer up to size messages.
func NewMemoryBroker(size int, logger *slog.Logger) *MemoryBroker {
	if size <= 0 {
		size = DefaultMemoryQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBroker{
		size:     size,
		queues:   make(map[Queue]chan Message),
		inflight: make(map[string]Delivery),
		dead:     make(map[Queue][]Message),
		logger:   logger.With("component", "memory_broker"),
	}
}

func (b *MemoryBroker) channelLocked(queue Queue) (chan Message, error) {
	if b.closed {
		return nil, ErrQueueClosed
	}
	ch, ok := b.queues[queue]
	if !ok {
		ch = make(chan Message, b.size)
		b.queues[queue] = ch
	}
	return ch, nil
}

// Push appends msg to queue. It fails with ErrQueueFull instead of blocking.
func (b *MemoryBroker) Push(ctx context.Context, queue Queue, msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.channelLocked(queue)
	if err != nil {
		return err
	}

	select {
	case ch <- msg:
		b.logger.Debug("message pushed",
			"queue", queue,
			"job_id", msg.ID,
			"task", msg.Task,
			"queue_len", len(ch),
			"queue_cap", cap(ch))
		return nil
	default:
		return fmt.Errorf("%w: queue %s capacity %d reached", ErrQueueFull, queue, cap(ch))
	}
}

// Claim blocks until a message is available on queue or ctx is done.
func (b *MemoryBroker) Claim(ctx context.Context, queue Queue) (*Delivery, error) {
	b.mu.Lock()
	ch, err := b.channelLocked(queue)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return nil, ErrQueueClosed
		}
		d := Delivery{Queue: queue, Message: msg, Token: msg.ID}
		b.mu.Lock()
		b.inflight[d.Token] = d
		b.mu.Unlock()
		return &d, nil
	}
}

// Ack forgets a claimed delivery.
func (b *MemoryBroker) Ack(ctx context.Context, d *Delivery) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, d.Token)
	return nil
}

// Reject moves a claimed delivery to the queue's dead letters.
func (b *MemoryBroker) Reject(ctx context.Context, d *Delivery, cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, d.Token)
	b.dead[d.Queue] = append(b.dead[d.Queue], d.Message)
	b.logger.Debug("message dead-lettered",
		"queue", d.Queue,
		"job_id", d.Message.ID,
		"error", cause)
	return nil
}

// Ping always succeeds unless the broker is closed.
func (b *MemoryBroker) Ping(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrQueueClosed
	}
	return nil
}

// Len returns the number of messages waiting on queue.
func (b *MemoryBroker) Len(queue Queue) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queue])
}

// InFlight returns the number of claimed but unacknowledged deliveries.
func (b *MemoryBroker) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}

// DeadLetters returns the rejected messages of queue.
func (b *MemoryBroker) DeadLetters(queue Queue) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.dead[queue]...)
}

// Close closes every queue. Pending claims return ErrQueueClosed once their
// queue is drained.
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.queues {
		close(ch)
	}
	b.logger.Info("memory broker closed")
}

// MemoryResultStore is an in-process ResultStore with per-record expiry.
type MemoryResultStore struct {
	mu   sync.Mutex
	jobs map[string]memoryRecord
	ttl  time.Duration
	now  func() time.Time
}

type memoryRecord struct {
	job       Job
	expiresAt time.Time
}

var _ ResultStore = (*MemoryResultStore)(nil)

// NewMemoryResultStore creates a store whose records expire ttl after their
// last write. A zero ttl keeps records forever.
func NewMemoryResultStore(ttl time.Duration) *MemoryResultStore {
	return &MemoryResultStore{
		jobs: make(map[string]memoryRecord),
		ttl:  ttl,
		now:  time.Now,
	}
}

// SetClock replaces the store's time source.
func (s *MemoryResultStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryResultStore) put(j *Job) {
	rec := memoryRecord{job: cloneJob(j)}
	if s.ttl > 0 {
		rec.expiresAt = s.now().Add(s.ttl)
	}
	s.jobs[j.ID] = rec
}

func (s *MemoryResultStore) lookup(id string) (*Job, bool) {
	rec, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	if !rec.expiresAt.IsZero() && !s.now().Before(rec.expiresAt) {
		delete(s.jobs, id)
		return nil, false
	}
	j := cloneJob(&rec.job)
	return &j, true
}

// Create stores a new job record.
func (s *MemoryResultStore) Create(ctx context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(j)
	return nil
}

// Get returns a copy of the job record.
func (s *MemoryResultStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return j, nil
}

// Update applies fn to a copy of the record under the store lock.
func (s *MemoryResultStore) Update(ctx context.Context, id string, fn func(j *Job) error) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err := fn(j); err != nil {
		return nil, err
	}
	s.put(j)
	return j, nil
}

// Delete removes a job record.
func (s *MemoryResultStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

// Ping always succeeds.
func (s *MemoryResultStore) Ping(ctx context.Context) error {
	return nil
}

func cloneJob(j *Job) Job {
	c := *j
	if j.Progress != nil {
		p := *j.Progress
		c.Progress = &p
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	c.Args = append(Args(nil), j.Args...)
	c.Result = append(c.Result[:0:0], j.Result...)
	return c
}
