package audit

import (
	"context"
	"sync"
)

// DefaultBufferSize is the number of entries a Recorder queues before it
// starts dropping.
const DefaultBufferSize = 256

// Logger is the logging surface the Recorder needs.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder writes entries to a Repository on a single background goroutine
// so request handlers never wait on SQLite. Record never blocks: when the
// queue is full the entry is dropped with a warning.
type Recorder struct {
	repo   Repository
	logger Logger
	ch     chan *Entry

	once sync.Once
	done chan struct{}

	mu      sync.Mutex
	dropped uint64
}

// NewRecorder creates a Recorder. Call Run to start writing.
func NewRecorder(repo Repository, logger Logger, buffer int) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		ch:     make(chan *Entry, buffer),
		done:   make(chan struct{}),
	}
}

// Record queues entry for writing. Safe on a nil Recorder.
func (r *Recorder) Record(entry *Entry) {
	if r == nil || entry == nil {
		return
	}
	select {
	case r.ch <- entry:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		r.logger.Warn("audit queue full, dropping entry", "action", entry.Action)
	}
}

// Dropped reports how many entries were discarded because the queue was full.
// A nil Recorder reports zero.
func (r *Recorder) Dropped() uint64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Run writes queued entries until ctx is cancelled, then flushes whatever is
// still queued and returns. Call it once.
func (r *Recorder) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.done) })

	for {
		select {
		case entry := <-r.ch:
			r.write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-r.ch:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has flushed and returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) write(entry *Entry) {
	// Detached context: shutdown must not abort the final flush.
	if err := r.repo.Create(context.Background(), entry); err != nil {
		r.logger.Error("audit write failed", "action", entry.Action, "error", err)
	}
}
