package learning

import "github.com/jaminalder/tictactoe-ai/internal/domain"

// Credit assigns the reward of a won game to the learner's last move.
//
// Only wins are rewarded: a winning O move is updated with RewardWin, and a
// winning X reply is charged as RewardLoss to the O move that preceded it.
// Draws and unfinished positions never update the table.
type Credit struct {
    learner *Learner

    prev    domain.Board
    action  int
    pending bool
}

// NewCredit returns a Credit feeding l.
func NewCredit(l *Learner) *Credit {
    return &Credit{learner: l}
}

// Own records that the learner played action on prev, producing next. It
// reports whether the move won and was credited.
func (c *Credit) Own(prev domain.Board, action int, next domain.Board) bool {
    c.prev, c.action, c.pending = prev, action, true
    return c.settle(next)
}

// Opponent records the opponent's reply that produced next. It reports
// whether the reply won and the learner's last move was charged.
func (c *Credit) Opponent(next domain.Board) bool {
    return c.settle(next)
}

// Reset forgets the last move, for a new game.
func (c *Credit) Reset() {
    c.pending = false
}

func (c *Credit) settle(next domain.Board) bool {
    out := next.Outcome()
    if !c.pending || out.Status != domain.Win {
        return false
    }
    c.learner.Update(c.prev, c.action, Reward(out), next)
    c.pending = false
    return true
}
