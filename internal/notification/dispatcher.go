package notification

import (
	"context"
	"sync"
	"time"

	"github.com/lumeo-dev/lumeo/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered to the SMTP sender",
		},
		[]string{"kind"},
	)

	notificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Notifications that exhausted all delivery attempts",
		},
		[]string{"kind"},
	)
)

// Dispatcher decouples lifecycle transitions from SMTP I/O: the
// controller enqueues after its mutation commits and never waits on
// the network. Each message gets at least one delivery attempt;
// failures are retried a few times, then logged and counted. A lost
// notification never rolls back the transition that produced it.
type Dispatcher struct {
	sender   Sender
	queue    chan Message
	done     chan struct{}
	attempts int
	backoff  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(sender Sender, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		sender:   sender,
		queue:    make(chan Message, buffer),
		done:     make(chan struct{}),
		attempts: 3,
		backoff:  2 * time.Second,
	}
}

// Start launches the delivery loop. It drains the queue until ctx is
// cancelled, then finishes in-flight work. done is closed when the loop
// exits so deferred Enqueue pushes cannot block past shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				// Drain whatever is already queued before exiting.
				for {
					select {
					case msg := <-d.queue:
						d.send(msg)
					default:
						return
					}
				}
			case msg := <-d.queue:
				d.send(msg)
			}
		}
	}()
}

// Enqueue hands a message to the delivery loop. It never blocks: if
// the buffer is full the message is pushed from a throwaway goroutine
// so the attempt is still guaranteed. A push that outlives the delivery
// loop is dropped and counted instead of blocking forever.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		logger.Log.Warn("notification queue full, deferring", "kind", msg.Kind, "to", msg.To)
		go func() {
			select {
			case d.queue <- msg:
			case <-d.done:
				notificationsFailed.WithLabelValues(string(msg.Kind)).Inc()
				logger.Log.Error("notification dropped at shutdown", "kind", msg.Kind, "to", msg.To)
			}
		}()
	}
}

// Wait blocks until the delivery loop has stopped. Call after
// cancelling the context passed to Start.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(msg Message) {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if err = d.sender.Send(msg.To, msg.Subject, msg.Body); err == nil {
			notificationsSent.WithLabelValues(string(msg.Kind)).Inc()
			return
		}
		logger.Log.Warn("notification delivery failed",
			"kind", msg.Kind,
			"to", msg.To,
			"attempt", attempt,
			"error", err)
		if attempt < d.attempts {
			time.Sleep(d.backoff * time.Duration(attempt))
		}
	}
	notificationsFailed.WithLabelValues(string(msg.Kind)).Inc()
	logger.Log.Error("notification dropped after retries", "kind", msg.Kind, "to", msg.To, "error", err)
}
