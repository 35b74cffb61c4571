package models

import (
	"encoding/json"
	"testing"

	"arcade/backend/internal/rules"

	"github.com/stretchr/testify/require"
)

func newTestMatch(t *testing.T, id GameID) Match {
	t.Helper()
	state, err := NewGameState(id)
	require.NoError(t, err)
	return Match{
		ID:        "match-1",
		GameID:    id,
		Players:   [2]User{{Email: "a@x.com"}, {Email: "b@x.com"}},
		GameState: state,
		Turn:      "a@x.com",
	}
}

func TestNewGameState(t *testing.T) {
	ttt, err := NewGameState(TicTacToeMP)
	require.NoError(t, err)
	require.NotNil(t, ttt.Board)
	require.Nil(t, ttt.Grid)

	c4, err := NewGameState(ConnectFourMP)
	require.NoError(t, err)
	require.NotNil(t, c4.Grid)
	require.Nil(t, c4.Board)

	_, err = NewGameState("chess-mp")
	require.Error(t, err)
}

func TestMatch_Validate(t *testing.T) {
	t.Run("awaiting move", func(t *testing.T) {
		require.NoError(t, newTestMatch(t, TicTacToeMP).Validate())
	})

	t.Run("both turn and winner", func(t *testing.T) {
		m := newTestMatch(t, TicTacToeMP)
		m.Winner = Draw
		require.Error(t, m.Validate())
	})

	t.Run("neither turn nor winner", func(t *testing.T) {
		m := newTestMatch(t, ConnectFourMP)
		m.Turn = ""
		require.Error(t, m.Validate())
	})

	t.Run("state does not match game", func(t *testing.T) {
		m := newTestMatch(t, ConnectFourMP)
		m.GameState, _ = NewGameState(TicTacToeMP)
		require.Error(t, m.Validate())
	})

	t.Run("stranger holds the turn", func(t *testing.T) {
		m := newTestMatch(t, TicTacToeMP)
		m.Turn = "c@x.com"
		require.Error(t, m.Validate())
	})
}

func TestMatch_CloneDoesNotShareBoard(t *testing.T) {
	m := newTestMatch(t, TicTacToeMP)

	c := m.Clone()
	c.GameState.Board[0] = rules.X

	require.Equal(t, rules.Empty, m.GameState.Board[0])
}

func TestMatch_JSONShape(t *testing.T) {
	m := newTestMatch(t, TicTacToeMP)

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "tic-tac-toe-mp", decoded["gameId"])
	require.Equal(t, "a@x.com", decoded["turn"])
	require.NotContains(t, decoded, "winner")
	state := decoded["gameState"].(map[string]any)
	require.Len(t, state["board"], 9)
	require.NotContains(t, state, "grid")
}
