package match

import (
	"context"
	"fmt"
	"slices"

	"arcade/backend/internal/models"
	"arcade/backend/internal/store"

	"go.uber.org/zap"
)

// Archiver receives every match the moment it finishes.
type Archiver interface {
	Archive(ctx context.Context, m models.Match) error
}

// Service applies moves to the matches collection.
type Service struct {
	store    *store.Store
	logger   *zap.Logger
	archiver Archiver
}

type Option func(*Service)

// WithArchiver stores finished matches through a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

func NewService(s *store.Store, logger *zap.Logger, opts ...Option) *Service {
	svc := &Service{store: s, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// SubmitMove applies move by actor to match id. The turn check runs against
// the freshest stored match, again on every compare-and-swap retry.
func (s *Service) SubmitMove(ctx context.Context, origin, id, actor string, move Move) (models.Match, error) {
	var updated models.Match
	_, err := store.UpdateCollection(ctx, s.store, origin, store.KeyMatches, func(all []models.Match) ([]models.Match, error) {
		i := slices.IndexFunc(all, func(m models.Match) bool { return m.ID == id })
		if i < 0 {
			return nil, ErrMatchNotFound
		}
		next, err := Play(all[i], actor, move)
		if err != nil {
			return nil, err
		}
		all[i] = next
		updated = next
		return all, nil
	})
	if err != nil {
		return models.Match{}, err
	}

	s.logger.Debug("move applied",
		zap.String("match_id", id),
		zap.String("player", actor),
		zap.Int("position", move.Position))

	if updated.Finished() {
		s.logger.Info("match finished",
			zap.String("match_id", id),
			zap.String("game_id", string(updated.GameID)),
			zap.String("winner", updated.Winner))
		s.archive(ctx, updated)
	}
	return updated, nil
}

// Get returns match id.
func (s *Service) Get(ctx context.Context, id string) (models.Match, error) {
	all, err := store.LoadCollection[models.Match](ctx, s.store, store.KeyMatches)
	if err != nil {
		return models.Match{}, err
	}
	return find(all, id)
}

// ListForPlayer returns the matches email plays in, newest first.
func (s *Service) ListForPlayer(ctx context.Context, email string) ([]models.Match, error) {
	all, err := store.LoadCollection[models.Match](ctx, s.store, store.KeyMatches)
	if err != nil {
		return nil, err
	}
	out := []models.Match{}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].HasPlayer(email) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Service) archive(ctx context.Context, m models.Match) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, m); err != nil {
		s.logger.Error("failed to archive match",
			zap.String("match_id", m.ID),
			zap.Error(err))
	}
}

func find(all []models.Match, id string) (models.Match, error) {
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
}
