package challenge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"arcade/backend/internal/models"
	"arcade/backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInvitee    = errors.New("invitee is unknown or is the inviter")
	ErrUnknownGame       = errors.New("unknown multiplayer game")
	ErrChallengeNotFound = errors.New("challenge not found")
)

// UserResolver looks up accounts by email.
type UserResolver interface {
	ResolveUser(ctx context.Context, email string) (models.User, bool, error)
}

// Service creates and settles challenges. Challenges live in the
// store.KeyChallenges collection, matches created on acceptance in
// store.KeyMatches.
type Service struct {
	store  *store.Store
	users  UserResolver
	logger *zap.Logger
}

func NewService(s *store.Store, users UserResolver, logger *zap.Logger) *Service {
	return &Service{store: s, users: users, logger: logger}
}

// Create invites inviteeEmail to play gameID against inviter.
func (s *Service) Create(ctx context.Context, origin string, inviter models.User, inviteeEmail string, gameID models.GameID) (models.Challenge, error) {
	if !gameID.Valid() {
		return models.Challenge{}, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}

	email := strings.ToLower(strings.TrimSpace(inviteeEmail))
	if email == "" || email == inviter.Email {
		return models.Challenge{}, ErrInvalidInvitee
	}
	_, ok, err := s.users.ResolveUser(ctx, email)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("resolve invitee: %w", err)
	}
	if !ok {
		return models.Challenge{}, ErrInvalidInvitee
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Challenge{}, err
	}
	c := models.Challenge{
		ID:           id.String(),
		Inviter:      inviter,
		InviteeEmail: email,
		GameID:       gameID,
		Status:       models.ChallengePending,
	}

	_, err = store.UpdateCollection(ctx, s.store, origin, store.KeyChallenges, func(all []models.Challenge) ([]models.Challenge, error) {
		return append(all, c), nil
	})
	if err != nil {
		return models.Challenge{}, fmt.Errorf("save challenge: %w", err)
	}

	s.logger.Info("challenge created",
		zap.String("challenge_id", c.ID),
		zap.String("inviter", inviter.Email),
		zap.String("invitee", email),
		zap.String("game_id", string(gameID)))
	return c, nil
}

// Accept turns a pending challenge addressed to accepter into a match. The
// challenge is taken out of the collection first, so only one of several
// concurrent accepts gets to create the match.
func (s *Service) Accept(ctx context.Context, origin, challengeID string, accepter models.User) (models.Match, error) {
	c, err := s.take(ctx, origin, challengeID, accepter.Email)
	if err != nil {
		return models.Match{}, err
	}

	m, err := NewMatch(c, accepter)
	if err != nil {
		return models.Match{}, err
	}

	_, err = store.UpdateCollection(ctx, s.store, origin, store.KeyMatches, func(all []models.Match) ([]models.Match, error) {
		return append(all, m), nil
	})
	if err != nil {
		s.restore(ctx, origin, c)
		return models.Match{}, fmt.Errorf("save match: %w", err)
	}

	s.logger.Info("challenge accepted",
		zap.String("challenge_id", c.ID),
		zap.String("match_id", m.ID),
		zap.String("game_id", string(m.GameID)))
	return m, nil
}

// Decline drops a pending challenge addressed to decliner.
func (s *Service) Decline(ctx context.Context, origin, challengeID string, decliner models.User) error {
	c, err := s.take(ctx, origin, challengeID, decliner.Email)
	if err != nil {
		return err
	}
	s.logger.Info("challenge declined",
		zap.String("challenge_id", c.ID),
		zap.String("invitee", decliner.Email))
	return nil
}

// ListIncoming returns the pending challenges addressed to email.
func (s *Service) ListIncoming(ctx context.Context, email string) ([]models.Challenge, error) {
	all, err := store.LoadCollection[models.Challenge](ctx, s.store, store.KeyChallenges)
	if err != nil {
		return nil, err
	}
	return Incoming(all, email), nil
}

// ListOutgoing returns the pending challenges sent by email.
func (s *Service) ListOutgoing(ctx context.Context, email string) ([]models.Challenge, error) {
	all, err := store.LoadCollection[models.Challenge](ctx, s.store, store.KeyChallenges)
	if err != nil {
		return nil, err
	}
	out := []models.Challenge{}
	for _, c := range all {
		if c.Inviter.Email == email && c.Status == models.ChallengePending {
			out = append(out, c)
		}
	}
	return out, nil
}

// Incoming filters all down to email's lobby.
func Incoming(all []models.Challenge, email string) []models.Challenge {
	out := []models.Challenge{}
	for _, c := range all {
		if c.IncomingFor(email) {
			out = append(out, c)
		}
	}
	return out
}

// NewMatch builds the match that starts when accepter accepts c. The inviter
// sits first and moves first.
func NewMatch(c models.Challenge, accepter models.User) (models.Match, error) {
	state, err := models.NewGameState(c.GameID)
	if err != nil {
		return models.Match{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return models.Match{}, err
	}
	return models.Match{
		ID:        id.String(),
		GameID:    c.GameID,
		Players:   [2]models.User{c.Inviter, accepter},
		GameState: state,
		Turn:      c.Inviter.Email,
	}, nil
}

// take removes the pending challenge id addressed to invitee and returns it.
func (s *Service) take(ctx context.Context, origin, id, invitee string) (models.Challenge, error) {
	var taken models.Challenge
	_, err := store.UpdateCollection(ctx, s.store, origin, store.KeyChallenges, func(all []models.Challenge) ([]models.Challenge, error) {
		i := slices.IndexFunc(all, func(c models.Challenge) bool {
			return c.ID == id && c.IncomingFor(invitee)
		})
		if i < 0 {
			return nil, ErrChallengeNotFound
		}
		taken = all[i]
		return slices.Delete(all, i, i+1), nil
	})
	if err != nil {
		return models.Challenge{}, err
	}
	return taken, nil
}

func (s *Service) restore(ctx context.Context, origin string, c models.Challenge) {
	_, err := store.UpdateCollection(ctx, s.store, origin, store.KeyChallenges, func(all []models.Challenge) ([]models.Challenge, error) {
		if slices.ContainsFunc(all, func(x models.Challenge) bool { return x.ID == c.ID }) {
			return all, nil
		}
		return append(all, c), nil
	})
	if err != nil {
		s.logger.Error("failed to restore challenge",
			zap.String("challenge_id", c.ID),
			zap.Error(err))
	}
}
