package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"arcade/backend/internal/hub"

	"go.uber.org/zap"
)

const defaultMaxRetries = 5

// UpdateFunc derives the next value of a key from its freshest value. It may
// run more than once per Update and must not have side effects. Returning an
// error aborts the update without writing.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is the synchronization layer. Writes go through Update, which
// re-reads the key and re-runs the caller's checks until its compare-and-swap
// lands, then notifies every subscriber except the writer's own origin.
//
// When the backend cannot be reached the store keeps working on its last
// known values in memory and reports Degraded until the backend answers again.
type Store struct {
	backend    Backend
	hub        *hub.Hub
	logger     *zap.Logger
	maxRetries int

	mu       sync.Mutex
	cache    map[string]Entry
	notified map[string]int64
	watched  map[string]int
	degraded bool
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func New(backend Backend, h *hub.Hub, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		hub:        h,
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		cache:      make(map[string]Entry),
		notified:   make(map[string]int64),
		watched:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the latest value of key. It never fails: if the backend is
// unreachable the last locally known entry is returned.
func (s *Store) Read(ctx context.Context, key string) Entry {
	entry, err := s.backend.Get(ctx, key)
	if err != nil {
		if !abandoned(ctx, err) {
			s.degrade("read", key, err)
		}
		return s.cached(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy()
	if cached, ok := s.cache[key]; !ok || entry.Version >= cached.Version {
		s.cache[key] = entry
	}
	return s.cache[key]
}

// Write stores value under key unconditionally (last writer wins).
func (s *Store) Write(ctx context.Context, origin, key string, value []byte) (Entry, error) {
	return s.Update(ctx, origin, key, func([]byte) ([]byte, error) {
		return value, nil
	})
}

// Update applies fn to the freshest value of key and writes the result.
func (s *Store) Update(ctx context.Context, origin, key string, fn UpdateFunc) (Entry, error) {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		current, err := s.backend.Get(ctx, key)
		if abandoned(ctx, err) {
			return Entry{}, ctxErr(ctx, err)
		}
		if err != nil {
			return s.updateLocal(origin, key, fn, err)
		}

		next, err := fn(current.Value)
		if err != nil {
			return Entry{}, err
		}

		entry, err := s.backend.Put(ctx, key, next, current.Version)
		if errors.Is(err, ErrConflict) {
			s.logger.Debug("store write conflict, retrying",
				zap.String("key", key),
				zap.Int64("version", current.Version),
				zap.Int("attempt", attempt))
			continue
		}
		if abandoned(ctx, err) {
			return Entry{}, ctxErr(ctx, err)
		}
		if err != nil {
			return s.updateLocal(origin, key, fn, err)
		}

		s.mu.Lock()
		s.healthy()
		s.cache[key] = entry
		s.notified[key] = entry.Version
		s.mu.Unlock()

		s.publish(origin, entry)
		return entry, nil
	}
	return Entry{}, fmt.Errorf("update %s: %w", key, ErrConflict)
}

// updateLocal applies fn to the cached value only.
func (s *Store) updateLocal(origin, key string, fn UpdateFunc, cause error) (Entry, error) {
	s.degrade("write", key, cause)

	s.mu.Lock()
	current := s.cache[key]
	next, err := fn(current.Value)
	if err != nil {
		s.mu.Unlock()
		return Entry{}, err
	}
	entry := Entry{Key: key, Value: next, Version: current.Version + 1}
	s.cache[key] = entry
	s.mu.Unlock()

	s.publish(origin, entry)
	return entry, nil
}

// Subscribe returns a client notified of changes to key made by any origin
// other than the given one.
func (s *Store) Subscribe(key, origin string) hub.Client {
	s.mu.Lock()
	s.watched[key]++
	if _, ok := s.notified[key]; !ok {
		s.notified[key] = s.cache[key].Version
	}
	s.mu.Unlock()

	return s.hub.Subscribe(key, origin)
}

// Unsubscribe stops notifications for client.
func (s *Store) Unsubscribe(key string, client hub.Client) {
	s.hub.Unsubscribe(key, client)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watched[key]--; s.watched[key] <= 0 {
		delete(s.watched, key)
	}
}

// Sync publishes changes that reached the backend without going through this
// store, such as writes made by another server process.
func (s *Store) Sync(ctx context.Context) error {
	keys := s.watchedKeys()
	if len(keys) == 0 {
		return nil
	}

	versions, err := s.backend.Versions(ctx, keys)
	if abandoned(ctx, err) {
		return ctxErr(ctx, err)
	}
	if err != nil {
		s.degrade("sync", "", err)
		return err
	}

	for _, key := range keys {
		s.mu.Lock()
		seen := s.notified[key]
		s.mu.Unlock()
		if versions[key] <= seen {
			continue
		}

		entry, err := s.backend.Get(ctx, key)
		if abandoned(ctx, err) {
			return ctxErr(ctx, err)
		}
		if err != nil {
			s.degrade("sync", key, err)
			return err
		}

		s.mu.Lock()
		s.healthy()
		if entry.Version <= s.notified[key] {
			s.mu.Unlock()
			continue
		}
		s.cache[key] = entry
		s.notified[key] = entry.Version
		s.mu.Unlock()

		s.publish("", entry)
	}
	return nil
}

// Degraded reports whether the last backend call failed.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) publish(origin string, entry Entry) {
	event := hub.Event{
		Type:    hub.EventChanged,
		Key:     entry.Key,
		Version: entry.Version,
		Payload: entry.Value,
	}
	if err := s.hub.Broadcast(origin, event); err != nil {
		s.logger.Error("failed to broadcast change",
			zap.String("key", entry.Key),
			zap.Int64("version", entry.Version),
			zap.Error(err))
	}
}

func (s *Store) cached(key string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.cache[key]; ok {
		return entry
	}
	return Entry{Key: key}
}

func (s *Store) degrade(op, key string, err error) {
	s.mu.Lock()
	s.degraded = true
	s.mu.Unlock()

	s.logger.Warn("storage unavailable, using in-memory state",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
}

// healthy must be called with s.mu held.
func (s *Store) healthy() {
	if s.degraded {
		s.logger.Info("storage available again")
		// Local writes numbered versions past the backend's.
		s.hub.Rewind()
	}
	s.degraded = false
}

// abandoned reports whether err comes from the caller giving up rather than
// from the backend. Such failures neither degrade the store nor touch the
// cache.
func abandoned(ctx context.Context, err error) bool {
	if err == nil || errors.Is(err, ErrConflict) {
		return false
	}
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Store) watchedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.watched))
	for key := range s.watched {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
