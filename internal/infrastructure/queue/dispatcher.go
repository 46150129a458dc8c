package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("notification dispatcher closed")

// Dispatcher delivers notifications off the request path. Notifications are
// sharded by recipient so one user's notifications are written in the order
// they were sent.
type Dispatcher struct {
	workers []chan domain.Notification
	next    ports.NotificationSender
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.NotificationSender = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers shards that hand each
// notification to next. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.NotificationSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Notification, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches the workers. They exit only after Close has drained their
// queues; cancelling ctx does not stop them, and deliveries run on a
// detached copy of it.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Send queues a copy of n. It blocks only while the recipient's shard is
// full, and gives up when ctx is done.
func (d *Dispatcher) Send(ctx context.Context, n *domain.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.NotificationsDispatchedTotal.WithLabelValues("async", "closed").Inc()
		return ErrClosed
	}

	idx := d.shardIndex(n.UserID)
	select {
	case d.workers[idx] <- *n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		metrics.NotificationsDispatchedTotal.WithLabelValues("async", "dropped").Inc()
		return ctx.Err()
	}
}

// Close stops accepting notifications and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	gauge := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for n := range ch {
		gauge.Set(float64(len(ch)))
		d.deliver(ctx, id, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.Notification) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
	defer cancel()

	if err := d.next.Send(sendCtx, &n); err != nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues("async", "error").Inc()
		d.log.Error().Err(err).
			Str("user_id", n.UserID).
			Str("notification_id", n.ID).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues("async", "ok").Inc()
}
