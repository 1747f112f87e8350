package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ghuysu/social-media-sub000/internal/logging"
)

const deliverTimeout = 15 * time.Second

type delivery struct {
	destination string
	code        string
	kind        Kind
}

// Dispatcher queues deliveries and works them off on a single
// goroutine. Enqueue never blocks: when the buffer is full the delivery
// is counted as dropped and the caller proceeds, because a pending
// challenge whose code never arrives simply expires.
type Dispatcher struct {
	notifier  Notifier
	log       logging.Logger
	ch        chan delivery
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(notifier Notifier, bufferSize int, log logging.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if log == nil {
		log = logging.Nop{}
	}

	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		ch:       make(chan delivery, bufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case item := <-d.ch:
			d.deliver(item)
		case <-d.done:
			for {
				select {
				case item := <-d.ch:
					d.deliver(item)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(item delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := d.notifier.Deliver(ctx, item.destination, item.code, item.kind); err != nil {
		d.log.Error("code delivery failed",
			"kind", item.kind.String(),
			"error", err,
		)
	}
}

// Enqueue schedules one code delivery. It reports whether the delivery
// was accepted; false means the buffer was full or the dispatcher is
// closed.
func (d *Dispatcher) Enqueue(destination, code string, kind Kind) bool {
	if d == nil || d.closed.Load() {
		return false
	}

	select {
	case d.ch <- delivery{destination: destination, code: code, kind: kind}:
		return true
	case <-d.done:
		return false
	default:
		d.dropped.Add(1)
		d.log.Warn("code delivery dropped, buffer full", "kind", kind.String())
		return false
	}
}

// Close drains queued deliveries and stops the worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many deliveries were discarded because the buffer
// was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
