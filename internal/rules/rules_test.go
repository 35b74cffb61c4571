package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func boardFrom(cells string) TicTacToeBoard {
	var b TicTacToeBoard
	for i, ch := range cells {
		switch ch {
		case 'X':
			b[i] = X
		case 'O':
			b[i] = O
		}
	}
	return b
}

func TestEvaluateTicTacToe(t *testing.T) {
	tests := []struct {
		name   string
		board  string
		kind   Kind
		winner Mark
	}{
		{name: "empty board", board: ".........", kind: None},
		{name: "top row", board: "XXX......", kind: Win, winner: X},
		{name: "middle column", board: ".O..O..O.", kind: Win, winner: O},
		{name: "main diagonal", board: "X...X...X", kind: Win, winner: X},
		{name: "anti diagonal", board: "..O.O.O..", kind: Win, winner: O},
		{name: "in progress", board: "XO.OX....", kind: None},
		{name: "full without line", board: "XOXXOOOXX", kind: Draw},
		{name: "full with line is a win", board: "XXXOOXOXO", kind: Win, winner: X},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateTicTacToe(boardFrom(tt.board))
			require.Equal(t, tt.kind, got.Kind)
			if tt.kind == Win {
				require.Equal(t, tt.winner, got.Winner)
			}
		})
	}
}

func TestEvaluateConnectFour_Vertical(t *testing.T) {
	g := NewConnectFourGrid()
	for r := 2; r <= 5; r++ {
		g[r][3] = Disc1
	}

	got := EvaluateConnectFour(g)

	require.Equal(t, Win, got.Kind)
	require.Equal(t, Disc1, got.Winner)
}

func TestEvaluateConnectFour_Lines(t *testing.T) {
	t.Run("horizontal at right edge", func(t *testing.T) {
		g := NewConnectFourGrid()
		for c := 3; c < ConnectFourCols; c++ {
			g[5][c] = Disc2
		}
		got := EvaluateConnectFour(g)
		require.Equal(t, Win, got.Kind)
		require.Equal(t, Disc2, got.Winner)
	})

	t.Run("down-right diagonal", func(t *testing.T) {
		g := NewConnectFourGrid()
		for i := 0; i < 4; i++ {
			g[1+i][2+i] = Disc1
		}
		require.Equal(t, Win, EvaluateConnectFour(g).Kind)
	})

	t.Run("up-right diagonal", func(t *testing.T) {
		g := NewConnectFourGrid()
		for i := 0; i < 4; i++ {
			g[5-i][i] = Disc2
		}
		got := EvaluateConnectFour(g)
		require.Equal(t, Win, got.Kind)
		require.Equal(t, Disc2, got.Winner)
	})

	t.Run("three in a row is not a win", func(t *testing.T) {
		g := NewConnectFourGrid()
		for c := 0; c < 3; c++ {
			g[5][c] = Disc1
		}
		g[5][3] = Disc2
		require.Equal(t, None, EvaluateConnectFour(g).Kind)
	})
}

func TestEvaluateConnectFour_Draw(t *testing.T) {
	var g ConnectFourGrid
	for r := 0; r < ConnectFourRows; r++ {
		for c := 0; c < ConnectFourCols; c++ {
			g[r][c] = Disc(1 + (c+r/2)%2)
		}
	}

	got := EvaluateConnectFour(g)

	require.Equal(t, Draw, got.Kind)
}

func TestConnectFourGrid_Drop(t *testing.T) {
	g := NewConnectFourGrid()

	for want := ConnectFourRows - 1; want >= 0; want-- {
		row, ok := g.Drop(3, Disc1)
		require.True(t, ok)
		require.Equal(t, want, row)
	}

	require.True(t, g.ColumnFull(3))
	_, ok := g.Drop(3, Disc2)
	require.False(t, ok)
	require.False(t, g.ColumnFull(2))
}

func TestBoardsEncodeEmptyCellsAsNull(t *testing.T) {
	b := NewTicTacToeBoard()
	b[4] = X

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	require.JSONEq(t, `[null,null,null,null,"X",null,null,null,null]`, string(raw))

	var g ConnectFourGrid
	require.NoError(t, json.Unmarshal([]byte(`[
		[null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null],
		[null,null,null,2,1,null,null]]`), &g))
	require.Equal(t, Disc2, g[5][3])
	require.Equal(t, Disc1, g[5][4])

	var m Mark
	require.Error(t, json.Unmarshal([]byte(`"Z"`), &m))
}
