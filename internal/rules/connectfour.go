package rules

import (
	"encoding/json"
	"fmt"
)

// Disc is a Connect Four cell: 0 is empty (JSON null), 1 and 2 are players.
type Disc uint8

const (
	NoDisc Disc = 0
	Disc1  Disc = 1
	Disc2  Disc = 2
)

const (
	ConnectFourRows = 6
	ConnectFourCols = 7
	connectLength   = 4
)

// ConnectFourGrid is indexed [row][col] with row 0 at the top.
type ConnectFourGrid [ConnectFourRows][ConnectFourCols]Disc

// right, down, down-right, up-right
var connectDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// NewConnectFourGrid returns an empty grid.
func NewConnectFourGrid() ConnectFourGrid {
	return ConnectFourGrid{}
}

// ColumnFull reports whether the top cell of col is taken.
func (g ConnectFourGrid) ColumnFull(col int) bool {
	return g[0][col] != NoDisc
}

// Drop places d in the lowest empty cell of col and returns its row.
// ok is false when the column is full; the grid is unchanged then.
func (g *ConnectFourGrid) Drop(col int, d Disc) (row int, ok bool) {
	for r := ConnectFourRows - 1; r >= 0; r-- {
		if g[r][col] == NoDisc {
			g[r][col] = d
			return r, true
		}
	}
	return -1, false
}

// Full reports whether all 42 cells are taken.
func (g ConnectFourGrid) Full() bool {
	for c := 0; c < ConnectFourCols; c++ {
		if !g.ColumnFull(c) {
			return false
		}
	}
	return true
}

// EvaluateConnectFour scans every cell as the start of a line in each of the
// four forward directions, so no line is counted twice.
func EvaluateConnectFour(g ConnectFourGrid) Outcome[Disc] {
	for r := 0; r < ConnectFourRows; r++ {
		for c := 0; c < ConnectFourCols; c++ {
			d := g[r][c]
			if d == NoDisc {
				continue
			}
			for _, dir := range connectDirections {
				if g.lineFrom(r, c, dir[0], dir[1]) {
					return won(d)
				}
			}
		}
	}
	if g.Full() {
		return Outcome[Disc]{Kind: Draw}
	}
	return Outcome[Disc]{}
}

func (g ConnectFourGrid) lineFrom(r, c, dr, dc int) bool {
	endR, endC := r+dr*(connectLength-1), c+dc*(connectLength-1)
	if endR < 0 || endR >= ConnectFourRows || endC < 0 || endC >= ConnectFourCols {
		return false
	}
	d := g[r][c]
	for i := 1; i < connectLength; i++ {
		if g[r+dr*i][c+dc*i] != d {
			return false
		}
	}
	return true
}

func (d Disc) MarshalJSON() ([]byte, error) {
	if d == NoDisc {
		return []byte("null"), nil
	}
	return json.Marshal(uint8(d))
}

func (d *Disc) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NoDisc
		return nil
	}
	var n uint8
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n > uint8(Disc2) {
		return fmt.Errorf("invalid connect four disc %d", n)
	}
	*d = Disc(n)
	return nil
}
