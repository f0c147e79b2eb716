package training

import (
    "context"
    "fmt"
    "math/rand/v2"
    "testing"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/learning"
)

func newTestTrainer(seed uint64) (*Trainer, *learning.Learner) {
    l := learning.New(rand.New(rand.NewPCG(seed, 1)))
    return New(l, rand.New(rand.NewPCG(seed, 2)), zerolog.Nop()), l
}

func values(tbl *learning.Table) map[domain.Key]learning.Row {
    out := map[domain.Key]learning.Row{}
    tbl.Each(func(k domain.Key, row learning.Row) {
        if row != (learning.Row{}) {
            out[k] = row
        }
    })
    return out
}

func TestTrainRunsEverySchedule(t *testing.T) {
    for _, n := range []int{0, 1, 10, 250, DefaultEpochs} {
        t.Run(fmt.Sprintf("epochs=%d", n), func(t *testing.T) {
            tr, l := newTestTrainer(uint64(n))
            l.SetEpsilon(0)

            var seen, ready int
            tr.OnEpisode = func(ep Episode) {
                require.Equal(t, seen, ep.Index)
                require.Equal(t, learning.TrainingEpsilon, l.Epsilon())
                seen++
            }
            tr.OnReady = func(st Stats) {
                require.Equal(t, n, st.Episodes)
                ready++
            }

            st, err := tr.Train(context.Background(), n)
            require.NoError(t, err)
            require.Equal(t, n, st.Episodes)
            require.Equal(t, n, seen)
            require.Equal(t, 1, ready)
            require.Equal(t, n, st.OWins+st.XWins+st.Draws)
            require.Equal(t, learning.PlayEpsilon, l.Epsilon())
        })
    }
}

func TestTrainCancelled(t *testing.T) {
    tr, l := newTestTrainer(7)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    tr.OnEpisode = func(ep Episode) {
        if ep.Index == 4 {
            cancel()
        }
    }
    tr.OnReady = func(Stats) { t.Fatal("ready after cancellation") }

    st, err := tr.Train(ctx, 100)
    require.ErrorIs(t, err, context.Canceled)
    require.Equal(t, 5, st.Episodes)
    require.Equal(t, learning.TrainingEpsilon, l.Epsilon())
}

func TestEpisodesAreLazyAndSingleUse(t *testing.T) {
    tr, _ := newTestTrainer(3)
    seq := tr.Episodes(context.Background(), 50)

    n := 0
    for range seq {
        n++
        if n == 3 {
            break
        }
    }
    require.Equal(t, 3, n)

    for range seq {
        t.Fatal("consumed sequence yielded again")
    }
}

func TestEpisodeShape(t *testing.T) {
    tr, _ := newTestTrainer(11)
    for ep := range tr.Episodes(context.Background(), 300) {
        require.True(t, ep.Outcome.Terminal())
        require.GreaterOrEqual(t, ep.Moves, 5)
        require.LessOrEqual(t, ep.Moves, domain.Size)
        if ep.Outcome.Status == domain.Draw {
            require.Equal(t, domain.Size, ep.Moves)
        }
        // every won game credits O's last move, draws never do
        require.Equal(t, ep.Outcome.Status == domain.Win, ep.Updated)
    }
}

func TestDrawsLeaveValuesUntouched(t *testing.T) {
    tr, l := newTestTrainer(5)
    draws := 0
    before := values(l.Table)
    for ep := range tr.Episodes(context.Background(), 500) {
        after := values(l.Table)
        if ep.Outcome.Status == domain.Draw {
            draws++
            require.Equal(t, before, after, "draw in episode %d changed values", ep.Index)
        }
        before = after
    }
    require.Positive(t, draws)
}

func TestTrainingLearnsValues(t *testing.T) {
    tr, l := newTestTrainer(9)
    st, err := tr.Train(context.Background(), 500)
    require.NoError(t, err)
    require.Positive(t, st.Updates)
    require.NotEmpty(t, values(l.Table))
}
