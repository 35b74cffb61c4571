package rules

import (
	"encoding/json"
	"fmt"
)

// Mark is a Tic-Tac-Toe cell value. The zero value is an empty cell and
// encodes as JSON null.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// TicTacToeCells is the number of cells on the board.
const TicTacToeCells = 9

// TicTacToeBoard is a row-major 3x3 board.
type TicTacToeBoard [TicTacToeCells]Mark

var ticTacToeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// NewTicTacToeBoard returns an empty board.
func NewTicTacToeBoard() TicTacToeBoard {
	return TicTacToeBoard{}
}

// Full reports whether every cell is taken.
func (b TicTacToeBoard) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// EvaluateTicTacToe checks the 8 lines, then fullness. A full board that also
// has a line is a win.
func EvaluateTicTacToe(b TicTacToeBoard) Outcome[Mark] {
	for _, line := range ticTacToeLines {
		a := b[line[0]]
		if a != Empty && a == b[line[1]] && a == b[line[2]] {
			return won(a)
		}
	}
	if b.Full() {
		return Outcome[Mark]{Kind: Draw}
	}
	return Outcome[Mark]{}
}

func (m Mark) MarshalJSON() ([]byte, error) {
	if m == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Mark(s) {
	case Empty, X, O:
		*m = Mark(s)
		return nil
	}
	return fmt.Errorf("invalid tic-tac-toe mark %q", s)
}
