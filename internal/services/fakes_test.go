package services

import (
	"context"
	"io"
	"sync"

	"sharebite/internal/events"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type published struct {
	name    string
	payload interface{}
}

// recordingBus captures published events without running handlers.
type recordingBus struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBus) Publish(ctx context.Context, name string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{name: name, payload: payload})
}

func (b *recordingBus) Subscribe(name string, handler events.Handler) {}

func (b *recordingBus) named(name string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []interface{}
	for _, e := range b.events {
		if e.name == name {
			out = append(out, e.payload)
		}
	}
	return out
}

type fakeImageStore struct {
	saved int
}

func (s *fakeImageStore) Save(ctx context.Context, data []byte, ext, contentType string) (string, error) {
	s.saved++
	return "/uploads/photo" + ext, nil
}
