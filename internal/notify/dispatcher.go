// Package notify implements the post-commit notification pipeline: a
// bounded in-process queue draining to pluggable providers, with retry and
// dead-letter semantics backed by the notifications table.
//
// The dispatcher is deliberately decoupled from the event processor: the
// processor fires Notify and moves on. Enqueue fails fast when the queue is
// over its configured depth; the caller treats that as non-fatal and the
// drop is logged and metered, never silent.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

var (
	notifEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_enqueued_total",
			Help: "Notifications accepted into the dispatch queue.",
		},
		[]string{"kind"},
	)
	notifDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Notifications rejected because the queue was full.",
		},
	)
	notifDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Notification delivery outcomes.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(notifEnqueued, notifDropped, notifDelivered)
}

// Provider delivers one notification to an external channel (email,
// WhatsApp, Slack, push). Implementations must be safe for concurrent use.
type Provider interface {
	Deliver(ctx context.Context, n *domain.Notification) error
}

// LogProvider is the default provider: it records delivery in the log only.
// Real channel providers are wired in from configuration.
type LogProvider struct {
	Log zerolog.Logger
}

// Deliver logs the notification and reports success.
func (p LogProvider) Deliver(_ context.Context, n *domain.Notification) error {
	p.Log.Info().
		Str("user_id", n.UserID).
		Str("kind", n.Kind).
		Str("title", n.Title).
		Msg("notification delivered")
	return nil
}

type message struct {
	userID  string
	kind    string
	title   string
	body    string
	data    map[string]any
	attempt int
	rowID   string
}

// Dispatcher owns the queue and the delivery loop. Construct with
// NewDispatcher and Start it once; Notify is safe for concurrent use.
type Dispatcher struct {
	db       *gorm.DB
	provider Provider
	log      zerolog.Logger

	queue       chan message
	maxAttempts int
	retryDelay  time.Duration

	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewDispatcher builds a dispatcher with the given queue depth (<=0 means
// 1024) and provider (nil means LogProvider).
func NewDispatcher(db *gorm.DB, provider Provider, log zerolog.Logger, depth int) *Dispatcher {
	if depth <= 0 {
		depth = 1024
	}
	if provider == nil {
		provider = LogProvider{Log: log}
	}
	return &Dispatcher{
		db:          db,
		provider:    provider,
		log:         log,
		queue:       make(chan message, depth),
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// Start launches n delivery workers (n <= 0 means 2). Workers drain until
// Stop is called and the queue is empty.
func (d *Dispatcher) Start(n int) {
	if n <= 0 {
		n = 2
	}
	for i := 0; i < n; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.closeMu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.closeMu.Unlock()
	d.wg.Wait()
}

// Notify persists a pending notification row and enqueues it for delivery.
// When the queue is over depth the row stays pending (the scheduler's next
// tick will not pick it up; it is surfaced by the drop counter and log) and
// the caller is never blocked.
func (d *Dispatcher) Notify(userID, kind, title, body string, data map[string]any) {
	row := &domain.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: body,
		Data:    data,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.CreateNotification(ctx, d.db, row); err != nil {
		d.log.Error().Err(err).Str("kind", kind).Msg("persist notification")
		return
	}

	d.closeMu.Lock()
	defer d.closeMu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- message{userID: userID, kind: kind, title: title, body: body, data: data, rowID: row.ID}:
		notifEnqueued.WithLabelValues(kind).Inc()
	default:
		notifDropped.Inc()
		d.log.Warn().Str("kind", kind).Str("user_id", userID).Msg("notification queue full, dropping")
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for m := range d.queue {
		d.deliver(m)
	}
}

// deliver attempts delivery with bounded retries, then dead-letters.
func (d *Dispatcher) deliver(m message) {
	n := &domain.Notification{
		ID:      m.rowID,
		UserID:  m.userID,
		Kind:    m.kind,
		Title:   m.title,
		Message: m.body,
		Data:    m.data,
	}
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := d.provider.Deliver(ctx, n)
		cancel()
		if err == nil {
			d.mark(m.rowID, domain.NotificationSent, attempt)
			notifDelivered.WithLabelValues("sent").Inc()
			return
		}
		d.log.Warn().Err(err).
			Str("kind", m.kind).
			Int("attempt", attempt).
			Msg("notification delivery failed")
		if attempt < d.maxAttempts {
			time.Sleep(d.retryDelay)
		}
	}
	d.mark(m.rowID, domain.NotificationDead, d.maxAttempts)
	notifDelivered.WithLabelValues("dead").Inc()
}

func (d *Dispatcher) mark(id, status string, attempts int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.MarkNotification(ctx, d.db, id, status, attempts); err != nil {
		d.log.Error().Err(err).Str("id", id).Msg("mark notification")
	}
}
