// Package training fills a learner's value table by self-play against a
// random X.
package training

import (
    "context"
    "iter"
    "math/rand/v2"
    "runtime"
    "sync/atomic"

    "github.com/pkg/errors"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/learning"
)

// DefaultEpochs is the number of games played before a human may move.
const DefaultEpochs = 1000

// Episode is the result of one simulated game.
type Episode struct {
    Index   int
    Outcome domain.Outcome
    Moves   int
    Updated bool
}

// Stats summarizes a training run.
type Stats struct {
    Episodes int
    OWins    int
    XWins    int
    Draws    int
    Updates  int
}

func (s *Stats) add(ep Episode) {
    s.Episodes++
    switch {
    case ep.Outcome.Status == domain.Draw:
        s.Draws++
    case ep.Outcome.Winner == domain.O:
        s.OWins++
    case ep.Outcome.Winner == domain.X:
        s.XWins++
    }
    if ep.Updated {
        s.Updates++
    }
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
    e.Int("episodes", s.Episodes).
        Int("o_wins", s.OWins).
        Int("x_wins", s.XWins).
        Int("draws", s.Draws).
        Int("updates", s.Updates)
}

// Trainer plays the learner as O against a uniformly random X.
type Trainer struct {
    TrainEpsilon float64
    PlayEpsilon  float64

    // OnEpisode, if set, is called after every episode of Train.
    OnEpisode func(Episode)
    // OnReady, if set, is called once Train has completed every episode.
    OnReady func(Stats)

    learner *learning.Learner
    rng     *rand.Rand
    log     zerolog.Logger
}

// New returns a trainer for l. A nil rng uses a randomly seeded source.
func New(l *learning.Learner, rng *rand.Rand, log zerolog.Logger) *Trainer {
    if rng == nil {
        rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
    }
    return &Trainer{
        TrainEpsilon: learning.TrainingEpsilon,
        PlayEpsilon:  learning.PlayEpsilon,
        learner:      l,
        rng:          rng,
        log:          log.With().Str("component", "trainer").Logger(),
    }
}

// Episodes returns a lazy sequence of at most epochs games. Each step plays
// one whole game before yielding it. The sequence can be consumed once; it
// ends early when ctx is done.
func (t *Trainer) Episodes(ctx context.Context, epochs int) iter.Seq[Episode] {
    var consumed atomic.Bool
    return func(yield func(Episode) bool) {
        if !consumed.CompareAndSwap(false, true) {
            return
        }
        for i := 0; i < epochs; i++ {
            if ctx.Err() != nil {
                return
            }
            if !yield(t.play(i)) {
                return
            }
        }
    }
}

// Train runs epochs games with the training epsilon, yielding the processor
// between games. When every game has been played the learner switches to
// the play epsilon and OnReady fires. A cancelled run returns the context
// error and leaves the training epsilon in place.
func (t *Trainer) Train(ctx context.Context, epochs int) (Stats, error) {
    var st Stats
    t.learner.SetEpsilon(t.TrainEpsilon)
    t.log.Info().Int("epochs", epochs).Float64("epsilon", t.TrainEpsilon).Msg("training started")

    for ep := range t.Episodes(ctx, epochs) {
        st.add(ep)
        if t.OnEpisode != nil {
            t.OnEpisode(ep)
        }
        runtime.Gosched()
    }

    if st.Episodes < epochs {
        err := errors.Wrapf(ctx.Err(), "training stopped after %d of %d episodes", st.Episodes, epochs)
        t.log.Warn().Err(err).Object("stats", st).Msg("training cancelled")
        return st, err
    }

    t.learner.SetEpsilon(t.PlayEpsilon)
    t.log.Info().Object("stats", st).Int("states", t.learner.Table.Len()).Msg("training finished")
    if t.OnReady != nil {
        t.OnReady(st)
    }
    return st, nil
}

// play runs one game from an empty board with X moving first.
func (t *Trainer) play(index int) Episode {
    ep := Episode{Index: index}
    credit := learning.NewCredit(t.learner)

    var b domain.Board
    for {
        empty := b.EmptyIndices()
        if len(empty) == 0 {
            break
        }
        b[empty[t.rng.IntN(len(empty))]] = domain.X
        ep.Moves++
        if credit.Opponent(b) {
            ep.Updated = true
        }
        if b.Outcome().Terminal() {
            break
        }

        prev := b
        move, err := t.learner.Act(b)
        if err != nil {
            break
        }
        b[move] = domain.O
        ep.Moves++
        if credit.Own(prev, move, b) {
            ep.Updated = true
        }
        if b.Outcome().Terminal() {
            break
        }
    }

    ep.Outcome = b.Outcome()
    t.log.Trace().Int("episode", index).Str("board", string(b.Key())).Stringer("outcome", ep.Outcome.Status).Msg("episode")
    return ep
}
