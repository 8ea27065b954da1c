package events

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestBus() *LocalBus {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLocalBus(log)
}

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	bus := newTestBus()
	var calls int32

	for i := 0; i < 3; i++ {
		bus.Subscribe(RequestCreated, func(ctx context.Context, payload interface{}) error {
			p := payload.(RequestCreatedPayload)
			assert.Equal(t, "Rice", p.FoodName)
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	bus.Publish(context.Background(), RequestCreated, RequestCreatedPayload{FoodName: "Rice"})
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublishIgnoresOtherEvents(t *testing.T) {
	bus := newTestBus()
	var calls int32
	bus.Subscribe(FeedbackCreated, func(ctx context.Context, payload interface{}) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	bus.Publish(context.Background(), DonationCreated, DonationCreatedPayload{})
	bus.Wait()

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFailingHandlersAreIsolated(t *testing.T) {
	bus := newTestBus()
	var delivered int32

	bus.Subscribe(RequestUpdated, func(ctx context.Context, payload interface{}) error {
		panic("boom")
	})
	bus.Subscribe(RequestUpdated, func(ctx context.Context, payload interface{}) error {
		return errors.New("write failed")
	})
	bus.Subscribe(RequestUpdated, func(ctx context.Context, payload interface{}) error {
		atomic.AddInt32(&delivered, 1)
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), RequestUpdated, RequestUpdatedPayload{Status: "approved"})
		bus.Wait()
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))
}

func TestPublishDoesNotWaitForHandlers(t *testing.T) {
	bus := newTestBus()
	release := make(chan struct{})
	bus.Subscribe(DonationCreated, func(ctx context.Context, payload interface{}) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), DonationCreated, DonationCreatedPayload{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow handler")
	}

	close(release)
	bus.Wait()
}

func TestHandlersOutliveCancelledPublisherContext(t *testing.T) {
	bus := newTestBus()
	var ctxErr error
	bus.Subscribe(FeedbackCreated, func(ctx context.Context, payload interface{}) error {
		ctxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, FeedbackCreated, FeedbackCreatedPayload{})
	bus.Wait()

	assert.NoError(t, ctxErr)
}
