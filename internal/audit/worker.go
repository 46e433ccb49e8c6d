package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/metrics"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// Worker buffers audit entries and persists them via a single goroutine,
// preserving append order. Persistence failures are logged and swallowed;
// the in-memory log already holds the entry.
type Worker struct {
	store domain.AuditStore
	log   *logrus.Logger
	jobs  chan models.AuditEntry
}

// NewWorker creates a Worker with the given queue capacity.
func NewWorker(store domain.AuditStore, log *logrus.Logger, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Worker{
		store: store,
		log:   log,
		jobs:  make(chan models.AuditEntry, queueSize),
	}
}

// Enqueue adds an entry for persistence. Non-blocking; drops the entry if
// the queue is full.
func (w *Worker) Enqueue(entry models.AuditEntry) {
	select {
	case w.jobs <- entry:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("event", entry.Event).Warn("audit persist queue full, dropping entry")
	}
}

// Run persists entries until the context is cancelled, then drains the
// remaining queue.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case entry := <-w.jobs:
			w.persist(entry)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case entry := <-w.jobs:
			w.persist(entry)
		default:
			return
		}
	}
}

func (w *Worker) persist(entry models.AuditEntry) {
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))

	if err := w.store.Append(context.Background(), entry); err != nil {
		w.log.WithError(err).WithField("event", entry.Event).Warn("audit persist failed")
	}
}
