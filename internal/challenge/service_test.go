package challenge

import (
	"context"
	"testing"
	"time"

	"arcade/backend/internal/hub"
	"arcade/backend/internal/models"
	"arcade/backend/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type users map[string]models.User

func (u users) ResolveUser(_ context.Context, email string) (models.User, bool, error) {
	user, ok := u[email]
	return user, ok, nil
}

var (
	alice = models.User{Email: "alice@x.com", Username: "alice", Avatar: "thor"}
	bob   = models.User{Email: "bob@x.com", Username: "bob", Avatar: "loki"}
	carol = models.User{Email: "carol@x.com", Username: "carol", Avatar: "hulk"}
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), hub.NewHub())
	dir := users{alice.Email: alice, bob.Email: bob, carol.Email: carol}
	return NewService(s, dir, zap.NewNop()), s
}

func TestCreate_InvalidInvitee(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	cases := map[string]string{
		"self":    alice.Email,
		"unknown": "ghost@x.com",
		"empty":   "  ",
	}
	for name, invitee := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "tab-a", alice, invitee, models.TicTacToeMP)
			require.ErrorIs(t, err, ErrInvalidInvitee)
		})
	}

	all, err := store.LoadCollection[models.Challenge](ctx, s, store.KeyChallenges)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreate_UnknownGame(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), "tab-a", alice, bob.Email, "chess-mp")

	require.ErrorIs(t, err, ErrUnknownGame)
}

func TestCreate_NormalizesInvitee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	c, err := svc.Create(ctx, "tab-a", alice, "  BOB@x.com ", models.ConnectFourMP)
	require.NoError(t, err)
	require.Equal(t, bob.Email, c.InviteeEmail)
	require.Equal(t, models.ChallengePending, c.Status)
	require.NotEmpty(t, c.ID)

	incoming, err := svc.ListIncoming(ctx, bob.Email)
	require.NoError(t, err)
	require.Equal(t, []models.Challenge{c}, incoming)

	outgoing, err := svc.ListOutgoing(ctx, alice.Email)
	require.NoError(t, err)
	require.Equal(t, []models.Challenge{c}, outgoing)

	incoming, err = svc.ListIncoming(ctx, carol.Email)
	require.NoError(t, err)
	require.Empty(t, incoming)
}

func TestAccept_CreatesMatchAndRemovesChallenge(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	c, err := svc.Create(ctx, "tab-a", alice, bob.Email, models.ConnectFourMP)
	require.NoError(t, err)

	m, err := svc.Accept(ctx, "tab-b", c.ID, bob)
	require.NoError(t, err)

	require.Equal(t, [2]models.User{alice, bob}, m.Players)
	require.Equal(t, alice.Email, m.Turn)
	require.Empty(t, m.Winner)
	require.Equal(t, models.ConnectFourMP, m.GameID)
	require.NotNil(t, m.GameState.Grid)
	require.NoError(t, m.Validate())

	incoming, err := svc.ListIncoming(ctx, bob.Email)
	require.NoError(t, err)
	require.Empty(t, incoming)

	matches, err := store.LoadCollection[models.Match](ctx, s, store.KeyMatches)
	require.NoError(t, err)
	require.Equal(t, []models.Match{m}, matches)
}

func TestAccept_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	c, err := svc.Create(ctx, "tab-a", alice, bob.Email, models.TicTacToeMP)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "tab-b", c.ID, bob)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, "tab-c", c.ID, bob)
	require.ErrorIs(t, err, ErrChallengeNotFound)

	matches, err := store.LoadCollection[models.Match](ctx, s, store.KeyMatches)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestAccept_OnlyByInvitee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	c, err := svc.Create(ctx, "tab-a", alice, bob.Email, models.TicTacToeMP)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "tab-c", c.ID, carol)
	require.ErrorIs(t, err, ErrChallengeNotFound)
	_, err = svc.Accept(ctx, "tab-a", c.ID, alice)
	require.ErrorIs(t, err, ErrChallengeNotFound)

	incoming, err := svc.ListIncoming(ctx, bob.Email)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
}

func TestDecline(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	c, err := svc.Create(ctx, "tab-a", alice, bob.Email, models.TicTacToeMP)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Decline(ctx, "tab-c", c.ID, carol), ErrChallengeNotFound)
	require.NoError(t, svc.Decline(ctx, "tab-b", c.ID, bob))

	all, err := store.LoadCollection[models.Challenge](ctx, s, store.KeyChallenges)
	require.NoError(t, err)
	require.Empty(t, all)
	matches, err := store.LoadCollection[models.Match](ctx, s, store.KeyMatches)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestLobby_SeesOtherWritersOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	lobby, err := svc.Watch(ctx, bob.Email, "tab-b")
	require.NoError(t, err)
	defer lobby.Close()
	require.Empty(t, lobby.Challenges())

	c, err := svc.Create(ctx, "tab-a", alice, bob.Email, models.TicTacToeMP)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	incoming, err := lobby.Next(waitCtx)
	require.NoError(t, err)
	require.Equal(t, []models.Challenge{c}, incoming)

	// bob's own accept does not wake bob's lobby.
	_, err = svc.Accept(ctx, "tab-b", c.ID, bob)
	require.NoError(t, err)

	quietCtx, cancelQuiet := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancelQuiet()
	_, err = lobby.Next(quietCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLobby_IgnoresChallengesForOthers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	lobby, err := svc.Watch(ctx, bob.Email, "tab-b")
	require.NoError(t, err)
	defer lobby.Close()

	_, err = svc.Create(ctx, "tab-a", alice, carol.Email, models.TicTacToeMP)
	require.NoError(t, err)

	quietCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = lobby.Next(quietCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLobby_Close(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	lobby, err := svc.Watch(ctx, bob.Email, "tab-b")
	require.NoError(t, err)
	lobby.Close()
	lobby.Close()

	_, err = lobby.Next(ctx)
	require.ErrorIs(t, err, ErrClosed)
}
