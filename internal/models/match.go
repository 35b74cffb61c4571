package models

import (
	"errors"
	"fmt"

	"arcade/backend/internal/rules"
)

// Draw is the winner value of a match that ended without a winner.
const Draw = "Draw"

// GameState is a tagged union keyed by the match's GameID: exactly one of
// Board (tic-tac-toe-mp) and Grid (connect-four-mp) is set.
type GameState struct {
	Board *rules.TicTacToeBoard  `json:"board,omitempty"`
	Grid  *rules.ConnectFourGrid `json:"grid,omitempty"`
}

// NewGameState returns the empty board for id.
func NewGameState(id GameID) (GameState, error) {
	switch id {
	case TicTacToeMP:
		b := rules.NewTicTacToeBoard()
		return GameState{Board: &b}, nil
	case ConnectFourMP:
		g := rules.NewConnectFourGrid()
		return GameState{Grid: &g}, nil
	}
	return GameState{}, fmt.Errorf("unknown multiplayer game %q", id)
}

// Clone returns a deep copy, so a move can be applied without touching the
// snapshot it was read from.
func (s GameState) Clone() GameState {
	var out GameState
	if s.Board != nil {
		b := *s.Board
		out.Board = &b
	}
	if s.Grid != nil {
		g := *s.Grid
		out.Grid = &g
	}
	return out
}

// Match is the shared record of one two-player game.
type Match struct {
	ID        string    `json:"id"`
	GameID    GameID    `json:"gameId"`
	Players   [2]User   `json:"players"`
	GameState GameState `json:"gameState"`
	Turn      string    `json:"turn"`
	Winner    string    `json:"winner,omitempty"`
}

// Finished reports whether the match is terminal.
func (m Match) Finished() bool {
	return m.Winner != ""
}

// Seat returns the index of email in Players, or -1.
func (m Match) Seat(email string) int {
	for i, p := range m.Players {
		if p.Email == email {
			return i
		}
	}
	return -1
}

// Opponent returns the other player of seat.
func (m Match) Opponent(seat int) User {
	return m.Players[1-seat]
}

// HasPlayer reports whether email plays in the match.
func (m Match) HasPlayer(email string) bool {
	return m.Seat(email) >= 0
}

// Clone returns a deep copy of the match.
func (m Match) Clone() Match {
	out := m
	out.GameState = m.GameState.Clone()
	return out
}

// Validate checks the structural invariants of a match record.
func (m Match) Validate() error {
	if (m.Turn == "") == (m.Winner == "") {
		return errors.New("match must either await a move or have a winner")
	}
	if m.Turn != "" && !m.HasPlayer(m.Turn) {
		return fmt.Errorf("turn %q is not a player", m.Turn)
	}
	if m.Winner != "" && m.Winner != Draw && !m.HasPlayer(m.Winner) {
		return fmt.Errorf("winner %q is not a player", m.Winner)
	}
	switch m.GameID {
	case TicTacToeMP:
		if m.GameState.Board == nil || m.GameState.Grid != nil {
			return errors.New("tic-tac-toe match needs a board state")
		}
	case ConnectFourMP:
		if m.GameState.Grid == nil || m.GameState.Board != nil {
			return errors.New("connect four match needs a grid state")
		}
	default:
		return fmt.Errorf("unknown multiplayer game %q", m.GameID)
	}
	return nil
}
