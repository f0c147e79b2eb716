// Package minimax picks moves by exhaustive game-tree search.
//
// O is the maximizing side and X the minimizing side regardless of who is
// asking. Terminal positions score WinO, WinX or Tie; scores are not
// discounted by depth, so a slow win is as good as a fast one. Among
// equally scored moves the lowest index is kept.
//
// The search has no pruning and no memoization. It is only suitable for the
// 3x3 board.
package minimax

import (
    "github.com/pkg/errors"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
)

// Terminal scores.
const (
    WinO = 10
    WinX = -10
    Tie  = 0
)

// ErrTerminal is returned when asked to move on a finished board or for no
// player.
var ErrTerminal = errors.New("minimax: no move available")

// BestMove returns the optimal cell for player on b.
func BestMove(b domain.Board, player domain.Cell) (int, error) {
    var s Searcher
    return s.BestMove(b, player)
}

// Score returns the minimax value of b with player to move. Finished boards
// have their terminal score.
func Score(b domain.Board, player domain.Cell) (int, error) {
    if player != domain.X && player != domain.O {
        return 0, errors.Wrapf(ErrTerminal, "player %q", player)
    }
    var s Searcher
    _, score := s.search(b, player)
    return score, nil
}

// Searcher runs searches and counts the terminal positions it evaluated.
// The zero value is ready to use.
type Searcher struct {
    Leaves int
}

// BestMove returns the optimal cell for player on b.
func (s *Searcher) BestMove(b domain.Board, player domain.Cell) (int, error) {
    if player != domain.X && player != domain.O {
        return -1, errors.Wrapf(ErrTerminal, "player %q", player)
    }
    if b.Outcome().Terminal() {
        return -1, errors.Wrapf(ErrTerminal, "board %s", b.Key())
    }
    move, _ := s.search(b, player)
    return move, nil
}

// search works on a copy of the board for every child, so the caller's
// board is never touched.
func (s *Searcher) search(b domain.Board, player domain.Cell) (int, int) {
    if score, ok := terminalScore(b); ok {
        s.Leaves++
        return -1, score
    }

    best, bestScore := -1, 0
    for _, i := range b.EmptyIndices() {
        next := b
        next[i] = player
        _, score := s.search(next, player.Opponent())
        if best == -1 || improves(player, score, bestScore) {
            best, bestScore = i, score
        }
    }
    return best, bestScore
}

func improves(player domain.Cell, score, best int) bool {
    if player == domain.O {
        return score > best
    }
    return score < best
}

func terminalScore(b domain.Board) (int, bool) {
    switch {
    case b.HasWin(domain.X):
        return WinX, true
    case b.HasWin(domain.O):
        return WinO, true
    case b.Full():
        return Tie, true
    }
    return 0, false
}
