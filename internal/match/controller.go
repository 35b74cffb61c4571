package match

import (
	"errors"
	"fmt"
	"slices"

	"arcade/backend/internal/models"
	"arcade/backend/internal/rules"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrMatchNotFound = errors.New("match not found")
)

// Reason says why a move was rejected.
type Reason string

const (
	ReasonFinished    Reason = "finished"
	ReasonNotYourTurn Reason = "not-your-turn"
	ReasonOutOfRange  Reason = "out-of-range"
	ReasonOccupied    Reason = "occupied"
	ReasonColumnFull  Reason = "column-full"
)

// MoveError is a rejected move. It matches ErrIllegalMove with errors.Is.
type MoveError struct {
	Reason Reason
}

func (e *MoveError) Error() string {
	return "illegal move: " + string(e.Reason)
}

func (e *MoveError) Unwrap() error {
	return ErrIllegalMove
}

func illegal(reason Reason) error {
	return &MoveError{Reason: reason}
}

// Move is one player action. Position is a cell (0..8) for tic-tac-toe and a
// column (0..6) for connect four.
type Move struct {
	Position int `json:"position"`
}

// Controller holds the per-game move rules of a multiplayer game.
type Controller interface {
	GameID() models.GameID
	NewState() models.GameState
	// Apply places the piece of seat at position. The match is known to be
	// in progress with seat to move; the returned match is a new value.
	Apply(m models.Match, seat, position int) (models.Match, error)
}

var controllers = map[models.GameID]Controller{
	models.TicTacToeMP:   TicTacToe{},
	models.ConnectFourMP: ConnectFour{},
}

// ControllerFor returns the controller of a multiplayer game.
func ControllerFor(id models.GameID) (Controller, bool) {
	c, ok := controllers[id]
	return c, ok
}

// Play validates that actor may move in m and applies the move.
func Play(m models.Match, actor string, move Move) (models.Match, error) {
	c, ok := ControllerFor(m.GameID)
	if !ok {
		return models.Match{}, fmt.Errorf("no controller for game %q", m.GameID)
	}
	if err := m.Validate(); err != nil {
		return models.Match{}, fmt.Errorf("stored match %s: %w", m.ID, err)
	}
	if m.Finished() {
		return models.Match{}, illegal(ReasonFinished)
	}
	if actor == "" || actor != m.Turn {
		return models.Match{}, illegal(ReasonNotYourTurn)
	}
	return c.Apply(m, m.Seat(actor), move.Position)
}

// settle records the outcome of the move just made by seat. symbols[i] is the
// piece of players[i]; a win goes to the player owning the winning symbol.
func settle[S comparable](m models.Match, seat int, symbols [2]S, outcome rules.Outcome[S]) (models.Match, error) {
	switch outcome.Kind {
	case rules.Win:
		owner := slices.Index(symbols[:], outcome.Winner)
		if owner < 0 {
			return models.Match{}, fmt.Errorf("winning symbol %v belongs to no player", outcome.Winner)
		}
		m.Winner = m.Players[owner].Email
		m.Turn = ""
	case rules.Draw:
		m.Winner = models.Draw
		m.Turn = ""
	default:
		m.Turn = m.Opponent(seat).Email
	}
	return m, nil
}

// TicTacToe is the tic-tac-toe-mp controller. players[0] plays X.
type TicTacToe struct{}

var ticTacToeMarks = [2]rules.Mark{rules.X, rules.O}

func (TicTacToe) GameID() models.GameID { return models.TicTacToeMP }

func (TicTacToe) NewState() models.GameState {
	b := rules.NewTicTacToeBoard()
	return models.GameState{Board: &b}
}

func (TicTacToe) Apply(m models.Match, seat, position int) (models.Match, error) {
	if position < 0 || position >= rules.TicTacToeCells {
		return models.Match{}, illegal(ReasonOutOfRange)
	}
	if m.GameState.Board == nil {
		return models.Match{}, errors.New("tic-tac-toe match without a board")
	}
	if m.GameState.Board[position] != rules.Empty {
		return models.Match{}, illegal(ReasonOccupied)
	}

	next := m.Clone()
	next.GameState.Board[position] = ticTacToeMarks[seat]
	return settle(next, seat, ticTacToeMarks, rules.EvaluateTicTacToe(*next.GameState.Board))
}

// ConnectFour is the connect-four-mp controller. players[i] drops disc i+1.
type ConnectFour struct{}

var connectFourDiscs = [2]rules.Disc{rules.Disc1, rules.Disc2}

func (ConnectFour) GameID() models.GameID { return models.ConnectFourMP }

func (ConnectFour) NewState() models.GameState {
	g := rules.NewConnectFourGrid()
	return models.GameState{Grid: &g}
}

func (ConnectFour) Apply(m models.Match, seat, position int) (models.Match, error) {
	if position < 0 || position >= rules.ConnectFourCols {
		return models.Match{}, illegal(ReasonOutOfRange)
	}
	if m.GameState.Grid == nil {
		return models.Match{}, errors.New("connect four match without a grid")
	}

	next := m.Clone()
	if _, ok := next.GameState.Grid.Drop(position, connectFourDiscs[seat]); !ok {
		return models.Match{}, illegal(ReasonColumnFull)
	}
	return settle(next, seat, connectFourDiscs, rules.EvaluateConnectFour(*next.GameState.Grid))
}
