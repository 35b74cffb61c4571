package match

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"arcade/backend/internal/hub"
	"arcade/backend/internal/models"
	"arcade/backend/internal/store"
)

// ErrClosed is returned by View.Next after Close.
var ErrClosed = errors.New("view closed")

// View follows one match on behalf of a player. Closing it only stops the
// notifications; the match is untouched and can be opened again.
type View struct {
	store  *store.Store
	client hub.Client
	id     string
	viewer string
	match  models.Match
	once   sync.Once
}

// Open subscribes viewer's origin to match id and reads its current state.
func (s *Service) Open(ctx context.Context, id, viewer, origin string) (*View, error) {
	client := s.store.Subscribe(store.KeyMatches, origin)
	m, err := s.Get(ctx, id)
	if err == nil && !m.HasPlayer(viewer) {
		err = ErrMatchNotFound
	}
	if err != nil {
		s.store.Unsubscribe(store.KeyMatches, client)
		return nil, err
	}
	return &View{store: s.store, client: client, id: id, viewer: viewer, match: m}, nil
}

// Match returns the state as last observed.
func (v *View) Match() models.Match {
	return v.match.Clone()
}

// MyTurn reports whether the viewer is the one to move.
func (v *View) MyTurn() bool {
	return v.match.Turn == v.viewer
}

// Next blocks until another origin changes the match and returns the new
// state.
func (v *View) Next(ctx context.Context) (models.Match, error) {
	for {
		select {
		case <-ctx.Done():
			return models.Match{}, ctx.Err()
		case msg, ok := <-v.client:
			if !ok {
				return models.Match{}, ErrClosed
			}
			event, err := hub.Decode(msg)
			if err != nil {
				return models.Match{}, err
			}
			all, err := store.DecodeCollection[models.Match](event.Payload)
			if err != nil {
				return models.Match{}, err
			}
			m, err := find(all, v.id)
			if err != nil || reflect.DeepEqual(m, v.match) {
				continue
			}
			v.match = m
			return m.Clone(), nil
		}
	}
}

// Close stops notifications. It is safe to call more than once.
func (v *View) Close() {
	v.once.Do(func() {
		v.store.Unsubscribe(store.KeyMatches, v.client)
	})
}
