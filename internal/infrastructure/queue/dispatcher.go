package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/evchat/chat-gateway/internal/api/metrics"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes chat messages to a fixed set of archive workers using
// consistent hashing on the username, guaranteeing per-user write ordering.
// Archiving is best-effort; failures are logged and dropped.
type Dispatcher struct {
	workers  []chan ports.ChatMessage
	archiver ports.MessageArchiver
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, archiver ports.MessageArchiver, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.ChatMessage, numWorkers),
		archiver: archiver,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ChatMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a message to the worker responsible for its username.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(msg ports.ChatMessage) {
	idx := d.shardIndex(msg.Username)
	d.workers[idx] <- msg
	metrics.ArchiveQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ChatMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.archiver.Archive(ctx, msg); err != nil {
				metrics.ArchiveErrorsTotal.Inc()
				d.log.Warn().Err(err).
					Str("username", msg.Username).
					Int("worker_id", id).
					Msg("message archive failed")
			} else {
				metrics.MessagesArchivedTotal.WithLabelValues(msg.Role).Inc()
			}
			metrics.ArchiveQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
