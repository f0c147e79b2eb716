package domain

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
    Board   Board
    Turn    Cell
    Outcome Outcome
    Moves   int
}

// New returns a new game with X to move.
func New() Game {
    return Game{Turn: X}
}

// Over reports whether the game has ended.
func (g Game) Over() bool { return g.Outcome.Terminal() }

// Winner returns the winning side, or Empty while in progress or on a draw.
func (g Game) Winner() Cell { return g.Outcome.Winner }

// Play places the current turn's mark at index (0..8).
func (g *Game) Play(index int) error {
    if g.Over() {
        return ErrGameOver
    }
    next, err := g.Board.Apply(index, g.Turn)
    if err != nil {
        return err
    }

    g.Board = next
    g.Moves++
    g.Outcome = next.Outcome()
    if g.Over() {
        return nil
    }

    g.Turn = g.Turn.Opponent()
    return nil
}

// PlayAt plays the cell at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    return g.Play(r*3 + c)
}
