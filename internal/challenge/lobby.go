package challenge

import (
	"context"
	"errors"
	"slices"
	"sync"

	"arcade/backend/internal/hub"
	"arcade/backend/internal/models"
	"arcade/backend/internal/store"
)

// ErrClosed is returned by Lobby.Next after Close.
var ErrClosed = errors.New("lobby closed")

// Lobby is a live view of one user's incoming challenges.
type Lobby struct {
	store  *store.Store
	client hub.Client
	self   string
	last   []models.Challenge
	once   sync.Once
}

// Watch subscribes self's lobby to challenge changes made by other origins.
func (s *Service) Watch(ctx context.Context, self, origin string) (*Lobby, error) {
	client := s.store.Subscribe(store.KeyChallenges, origin)
	incoming, err := s.ListIncoming(ctx, self)
	if err != nil {
		s.store.Unsubscribe(store.KeyChallenges, client)
		return nil, err
	}
	return &Lobby{store: s.store, client: client, self: self, last: incoming}, nil
}

// Challenges returns the incoming list as last observed.
func (l *Lobby) Challenges() []models.Challenge {
	return slices.Clone(l.last)
}

// Next blocks until the incoming list changes and returns it.
func (l *Lobby) Next(ctx context.Context) ([]models.Challenge, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-l.client:
			if !ok {
				return nil, ErrClosed
			}
			event, err := hub.Decode(msg)
			if err != nil {
				return nil, err
			}
			all, err := store.DecodeCollection[models.Challenge](event.Payload)
			if err != nil {
				return nil, err
			}
			incoming := Incoming(all, l.self)
			if slices.Equal(incoming, l.last) {
				continue
			}
			l.last = incoming
			return slices.Clone(incoming), nil
		}
	}
}

// Close stops notifications. It is safe to call more than once.
func (l *Lobby) Close() {
	l.once.Do(func() {
		l.store.Unsubscribe(store.KeyChallenges, l.client)
	})
}
