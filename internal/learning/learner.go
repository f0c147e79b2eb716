// Package learning implements the tabular value learner that plays O.
//
// The learner keeps a Table of per-cell values for every board it has seen,
// picks moves epsilon-greedily from it and updates it with a one-step
// temporal-difference rule:
//
//     q[prev][a] += alpha * (reward + gamma*max(q[next]) - q[prev][a])
//
// Rewards are seen from O's side: +10 when O wins, -10 when X wins.
package learning

import (
    "math"
    "math/rand/v2"
    "sync/atomic"

    "github.com/pkg/errors"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
)

// Default learning parameters.
const (
    DefaultAlpha    = 0.2
    DefaultGamma    = 0.9
    TrainingEpsilon = 0.4
    PlayEpsilon     = 0.1
)

// Rewards for the move that ended the game.
const (
    RewardWin  = 10.0
    RewardLoss = -10.0
)

// ErrNoMoves is returned when asked to act on a board with no empty cell.
var ErrNoMoves = errors.New("learning: no empty cell")

// Learner selects and learns O's moves. It is not safe for concurrent use
// except for the epsilon accessors.
type Learner struct {
    Table *Table
    Alpha float64
    Gamma float64

    epsilon atomic.Uint64
    rng     *rand.Rand
}

// New returns a learner with an empty table, default parameters and the
// training epsilon. A nil rng uses a randomly seeded source.
func New(rng *rand.Rand) *Learner {
    if rng == nil {
        rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
    }
    l := &Learner{
        Table: NewTable(),
        Alpha: DefaultAlpha,
        Gamma: DefaultGamma,
        rng:   rng,
    }
    l.SetEpsilon(TrainingEpsilon)
    return l
}

// Epsilon returns the current exploration probability.
func (l *Learner) Epsilon() float64 {
    return math.Float64frombits(l.epsilon.Load())
}

// SetEpsilon sets the exploration probability used by Act.
func (l *Learner) SetEpsilon(e float64) {
    l.epsilon.Store(math.Float64bits(e))
}

// Act selects a move with the learner's current epsilon.
func (l *Learner) Act(b domain.Board) (int, error) {
    return l.SelectAction(b, l.Epsilon())
}

// SelectAction explores a uniformly random empty cell with probability
// epsilon, otherwise returns the empty cell with the highest value. Ties go
// to the lowest index.
func (l *Learner) SelectAction(b domain.Board, epsilon float64) (int, error) {
    empty := b.EmptyIndices()
    if len(empty) == 0 {
        return -1, errors.Wrapf(ErrNoMoves, "board %s", b.Key())
    }
    if l.rng.Float64() < epsilon {
        return empty[l.rng.IntN(len(empty))], nil
    }

    row := l.Table.Get(b.Key())
    best := empty[0]
    for _, i := range empty[1:] {
        if row[i] > row[best] {
            best = i
        }
    }
    return best, nil
}

// Update moves the value of action in prev toward reward plus the
// discounted best value of next.
func (l *Learner) Update(prev domain.Board, action int, reward float64, next domain.Board) {
    row := l.Table.Get(prev.Key())
    target := reward + l.Gamma*l.Table.Get(next.Key()).Max()
    row[action] += l.Alpha * (target - row[action])
}

// Reward scores an outcome from O's side. Draws and unfinished games are 0.
func Reward(out domain.Outcome) float64 {
    if out.Status != domain.Win {
        return 0
    }
    switch out.Winner {
    case domain.O:
        return RewardWin
    case domain.X:
        return RewardLoss
    }
    return 0
}
