// Package events is the in-process publish/subscribe bus that decouples the
// domain services from notification fan-out. Events are not durable and do
// not cross process boundaries.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event names.
const (
	DonationCreated = "donation.created"
	RequestCreated  = "request.created"
	RequestUpdated  = "request.updated"
	FeedbackCreated = "feedback.created"
)

// Handler reacts to one published payload. Returned errors are logged by the
// bus and never reach the publisher.
type Handler func(ctx context.Context, payload interface{}) error

// Bus is the publish/subscribe contract the services depend on.
type Bus interface {
	Publish(ctx context.Context, name string, payload interface{})
	Subscribe(name string, handler Handler)
}

// LocalBus runs every handler on its own goroutine. A failing or panicking
// handler does not affect its siblings or the publisher.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	log      logrus.FieldLogger
}

func NewLocalBus(log logrus.FieldLogger) *LocalBus {
	return &LocalBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

func (b *LocalBus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish returns immediately. Handlers get a context that keeps the
// publisher's values but not its cancellation, since the HTTP request that
// triggered the event usually finishes first.
func (b *LocalBus) Publish(ctx context.Context, name string, payload interface{}) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.wg.Add(1)
		go b.run(detached, name, h, payload)
	}
}

func (b *LocalBus) run(ctx context.Context, name string, h Handler, payload interface{}) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event": name,
				"panic": fmt.Sprint(r),
			}).Error("event handler panicked")
		}
	}()

	if err := h(ctx, payload); err != nil {
		b.log.WithError(err).WithField("event", name).Error("event handler failed")
	}
}

// Wait blocks until every handler started so far has returned.
func (b *LocalBus) Wait() {
	b.wg.Wait()
}
