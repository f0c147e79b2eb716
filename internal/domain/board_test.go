package domain

import (
    "testing"

    "github.com/stretchr/testify/require"
)

// walk visits every board reachable from b with turn to move.
func walk(b Board, turn Cell, visit func(Board)) {
    visit(b)
    if b.Outcome().Terminal() {
        return
    }
    for _, i := range b.EmptyIndices() {
        next, _ := b.Apply(i, turn)
        walk(next, turn.Opponent(), visit)
    }
}

func TestReachableBoardsNeverHaveTwoWinners(t *testing.T) {
    seen := map[Key]bool{}
    walk(Board{}, X, func(b Board) {
        seen[b.Key()] = true
        require.False(t, b.HasWin(X) && b.HasWin(O), "both players win on\n%s", b)
    })
    require.Len(t, seen, 5478)
}

func TestFullBoardWithoutLineIsDraw(t *testing.T) {
    b, err := ParseBoard("xoxxoooxx")
    require.NoError(t, err)
    require.Empty(t, b.EmptyIndices())
    require.Equal(t, Outcome{Status: Draw}, b.Outcome())
}

func TestFullBoardWithLineIsWin(t *testing.T) {
    b, err := ParseBoard("xxxooxoxo")
    require.NoError(t, err)
    out := b.Outcome()
    require.Equal(t, Win, out.Status)
    require.Equal(t, X, out.Winner)
    require.Equal(t, [3]int{0, 1, 2}, out.Line)
}

func TestOutcomeInProgress(t *testing.T) {
    b, err := ParseBoard("xx-o-----")
    require.NoError(t, err)
    require.Equal(t, InProgress, b.Outcome().Status)
    require.False(t, b.Outcome().Terminal())
}

func TestEmptyIndicesAscending(t *testing.T) {
    b, err := ParseBoard("x-o-x-o--")
    require.NoError(t, err)
    require.Equal(t, []int{1, 3, 5, 7, 8}, b.EmptyIndices())
    require.Len(t, Board{}.EmptyIndices(), Size)
}

func TestApplyReturnsCopy(t *testing.T) {
    var b Board
    next, err := b.Apply(4, O)
    require.NoError(t, err)
    require.Equal(t, Empty, b[4])
    require.Equal(t, O, next[4])

    _, err = next.Apply(4, X)
    require.ErrorIs(t, err, ErrOccupied)
    require.ErrorIs(t, err, ErrInvalidMove)

    _, err = b.Apply(-1, X)
    require.ErrorIs(t, err, ErrOutOfBounds)
    _, err = b.Apply(0, Empty)
    require.ErrorIs(t, err, ErrInvalidMove)
}

func TestKeyRoundTrip(t *testing.T) {
    b, err := ParseBoard("XX.o.....")
    require.NoError(t, err)
    require.Equal(t, Key("xx-o-----"), b.Key())

    again, err := ParseBoard(string(b.Key()))
    require.NoError(t, err)
    require.Equal(t, b, again)

    _, err = ParseBoard("xx")
    require.Error(t, err)
    _, err = ParseBoard("xx-o----z")
    require.Error(t, err)
}

func TestCellHelpers(t *testing.T) {
    require.Equal(t, O, X.Opponent())
    require.Equal(t, X, O.Opponent())
    require.Equal(t, Empty, Empty.Opponent())
    require.Equal(t, "x", X.String())
    require.Equal(t, "", Empty.String())
}
