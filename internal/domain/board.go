package domain

import (
    "strings"

    "github.com/pkg/errors"
)

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// String returns the lowercase mark of the cell, or "" for Empty.
func (c Cell) String() string {
    switch c {
    case X:
        return "x"
    case O:
        return "o"
    default:
        return ""
    }
}

// Opponent returns the other player. Empty has no opponent.
func (c Cell) Opponent() Cell {
    switch c {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

// Size is the number of cells on the board.
const Size = 9

// Board is a fixed 3x3 board stored row-major. It is a value type: copies
// are independent snapshots.
type Board [Size]Cell

// WinLines are the index triples that win the game when held by one player.
var WinLines = [8][3]int{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// Errors returned by domain operations. All of them are invalid moves.
var (
    ErrInvalidMove = errors.New("invalid move")
    ErrOutOfBounds = errors.WithMessage(ErrInvalidMove, "out of bounds")
    ErrOccupied    = errors.WithMessage(ErrInvalidMove, "cell occupied")
    ErrNoPlayer    = errors.WithMessage(ErrInvalidMove, "no player")
    ErrGameOver    = errors.WithMessage(ErrInvalidMove, "game over")
)

// Apply returns a copy of b with player's mark placed at index.
func (b Board) Apply(index int, player Cell) (Board, error) {
    if index < 0 || index >= Size {
        return b, ErrOutOfBounds
    }
    if player != X && player != O {
        return b, ErrNoPlayer
    }
    if b[index] != Empty {
        return b, ErrOccupied
    }
    b[index] = player
    return b, nil
}

// EmptyIndices returns the indices of all empty cells in ascending order.
func (b Board) EmptyIndices() []int {
    out := make([]int, 0, Size)
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// HasWin reports whether side holds any complete line.
func (b Board) HasWin(side Cell) bool {
    if side == Empty {
        return false
    }
    for _, ln := range WinLines {
        if b[ln[0]] == side && b[ln[1]] == side && b[ln[2]] == side {
            return true
        }
    }
    return false
}

// Status classifies a board position.
type Status uint8

const (
    InProgress Status = iota
    Win
    Draw
)

func (s Status) String() string {
    switch s {
    case Win:
        return "win"
    case Draw:
        return "draw"
    default:
        return "in progress"
    }
}

// Outcome is the result of scanning a board. Winner and Line are only set
// for Win.
type Outcome struct {
    Status Status
    Winner Cell
    Line   [3]int
}

// Terminal reports whether the game has ended.
func (o Outcome) Terminal() bool { return o.Status != InProgress }

// Outcome scans the win lines in order and reports the first complete one.
// A full board without a complete line is a draw.
func (b Board) Outcome() Outcome {
    for _, ln := range WinLines {
        a := b[ln[0]]
        if a == Empty {
            continue
        }
        if a == b[ln[1]] && a == b[ln[2]] {
            return Outcome{Status: Win, Winner: a, Line: ln}
        }
    }
    if b.Full() {
        return Outcome{Status: Draw}
    }
    return Outcome{Status: InProgress}
}

// Key identifies a board configuration. Equal boards have equal keys.
type Key string

const keyAlphabet = "-xo"

// Key encodes the board as one symbol per cell in index order.
func (b Board) Key() Key {
    var sb strings.Builder
    sb.Grow(Size)
    for _, c := range b {
        sb.WriteByte(keyAlphabet[c])
    }
    return Key(sb.String())
}

// ParseBoard decodes a board from its key form. Both '-' and '.' are
// accepted for empty cells, marks are case-insensitive.
func ParseBoard(s string) (Board, error) {
    var b Board
    if len(s) != Size {
        return b, errors.Errorf("board %q: want %d cells, got %d", s, Size, len(s))
    }
    for i := 0; i < Size; i++ {
        switch s[i] {
        case '-', '.':
            b[i] = Empty
        case 'x', 'X':
            b[i] = X
        case 'o', 'O':
            b[i] = O
        default:
            return b, errors.Errorf("board %q: bad cell %q at %d", s, s[i], i)
        }
    }
    return b, nil
}

// String renders the board as three rows.
func (b Board) String() string {
    var sb strings.Builder
    for r := 0; r < 3; r++ {
        if r > 0 {
            sb.WriteByte('\n')
        }
        for c := 0; c < 3; c++ {
            sb.WriteByte(keyAlphabet[b[r*3+c]])
        }
    }
    return sb.String()
}
