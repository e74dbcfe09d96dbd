package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
	"github.com/Skotchmaster/sole_searcher/internal/storage"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *eventRecorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, _ := event.(map[string]any)
	r.events = append(r.events, recordedEvent{Topic: topic, Key: key, Event: m})
	return r.err
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type sessionRecorder struct {
	mu    sync.Mutex
	calls []*models.User
}

func (r *sessionRecorder) SessionChanged(_ context.Context, u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, u)
}

// failingStore reads from an inner store but refuses every write.
type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("disk full")
}

func newTestRepo() (*repo.StorageRepo, *storage.Memory) {
	mem := storage.NewMemory()
	return &repo.StorageRepo{Store: mem}, mem
}
