package models

import "fmt"

// GameID identifies a multiplayer game type.
type GameID string

const (
	TicTacToeMP   GameID = "tic-tac-toe-mp"
	ConnectFourMP GameID = "connect-four-mp"
)

// GameInfo describes an entry of the multiplayer catalog.
type GameInfo struct {
	ID   GameID `json:"id"`
	Name string `json:"name"`
}

// MultiplayerGames is the catalog, in display order.
var MultiplayerGames = []GameInfo{
	{ID: TicTacToeMP, Name: "Tic Tac Toe"},
	{ID: ConnectFourMP, Name: "Connect Four"},
}

// Valid reports whether id names a known multiplayer game.
func (id GameID) Valid() bool {
	for _, g := range MultiplayerGames {
		if g.ID == id {
			return true
		}
	}
	return false
}

// ParseGameID validates a raw game id.
func ParseGameID(raw string) (GameID, error) {
	id := GameID(raw)
	if !id.Valid() {
		return "", fmt.Errorf("unknown multiplayer game %q", raw)
	}
	return id, nil
}
