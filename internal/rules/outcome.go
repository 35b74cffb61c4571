// Package rules holds the win/draw evaluators shared by the single-player and
// multiplayer variants of the board games. Every function here is pure.
package rules

// Kind is the terminal classification of a board.
type Kind int

const (
	// None means the game is still in progress.
	None Kind = iota
	// Win means Winner holds the winning symbol.
	Win
	// Draw means the board is full and nobody won.
	Draw
)

func (k Kind) String() string {
	switch k {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "none"
	}
}

// Outcome is the result of evaluating a board. Winner is only meaningful when
// Kind is Win.
type Outcome[S comparable] struct {
	Kind   Kind
	Winner S
}

// Terminal reports whether the evaluated board ends the game.
func (o Outcome[S]) Terminal() bool {
	return o.Kind != None
}

func won[S comparable](s S) Outcome[S] {
	return Outcome[S]{Kind: Win, Winner: s}
}
