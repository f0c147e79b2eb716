package app

import (
    "context"
    "sync"
    "time"

    "github.com/pkg/errors"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/learning"
    "github.com/jaminalder/tictactoe-ai/internal/minimax"
    "github.com/jaminalder/tictactoe-ai/internal/training"
)

// Errors exposed by the service layer.
var (
    ErrNotFound      = errors.New("session not found")
    ErrUnknownEngine = errors.New("unknown engine")
    ErrUnknownMode   = errors.New("unknown mode")
)

// AISide is the mark played by the computer opponent.
const AISide = domain.O

// Engine selects how the computer opponent picks its moves.
type Engine string

const (
    EngineMinimax  Engine = "minimax"
    EngineLearning Engine = "learning"
)

// ParseEngine validates an engine name.
func ParseEngine(s string) (Engine, error) {
    switch e := Engine(s); e {
    case EngineMinimax, EngineLearning:
        return e, nil
    }
    return "", errors.Wrapf(ErrUnknownEngine, "%q", s)
}

// Mode selects who plays O.
type Mode string

const (
    ModePvP  Mode = "pvp"
    ModePvAI Mode = "pvai"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
    switch m := Mode(s); m {
    case ModePvP, ModePvAI:
        return m, nil
    }
    return "", errors.Wrapf(ErrUnknownMode, "%q", s)
}

// Session is a snapshot of one game session as seen by the UI.
type Session struct {
    ID       string
    Engine   Engine
    Mode     Mode
    Game     domain.Game
    Training bool
    Ready    bool
    Trained  int
    Epochs   int
    Created  time.Time
    Updated  time.Time
}

// AcceptsHumanMove reports whether a cell activation would be played.
func (s Session) AcceptsHumanMove() bool {
    if s.Training || s.Game.Over() {
        return false
    }
    return s.Mode == ModePvP || s.Game.Turn != AISide
}

// session is the mutable state behind a Session.
type session struct {
    Session

    learner *learning.Learner
    credit  *learning.Credit

    run    int
    cancel context.CancelFunc
    done   chan struct{}
    // busy is set while a training goroutine may still touch the learner.
    // It outlives Training after a cancel, until the run has returned.
    busy bool
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// send delivers payload without blocking. It reports false when the
// subscriber is not keeping up.
func (s *subscriber) send(payload []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- payload:
        return true
    default:
        return false
    }
}

// Service manages sessions and subscribers.
type Service struct {
    mu       sync.Mutex
    sessions map[string]*session
    subs     map[string]map[*subscriber]struct{}
    render   func(Session) []byte

    opts Options
    rand sources
    log  zerolog.Logger
}

// NewService creates a service. Without WithRenderer broadcasts carry no
// payload.
func NewService(opts ...Option) *Service {
    s := &Service{
        sessions: make(map[string]*session),
        subs:     make(map[string]map[*subscriber]struct{}),
        render:   func(Session) []byte { return nil },
        opts:     DefaultOptions(),
        log:      zerolog.Nop(),
    }
    for _, opt := range opts {
        opt(s)
    }
    s.log = s.log.With().Str("component", "sessions").Logger()
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Session) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(Session) []byte { return nil }
        return
    }
    s.render = renderer
}

// CreateSession registers a new player-vs-player session whose computer
// opponent, once enabled, uses engine.
func (s *Service) CreateSession(engine Engine) (*Session, error) {
    if _, err := ParseEngine(string(engine)); err != nil {
        return nil, err
    }

    s.mu.Lock()
    defer s.mu.Unlock()
    now := time.Now()
    sess := &session{Session: Session{
        ID:      newSessionID(),
        Engine:  engine,
        Mode:    ModePvP,
        Game:    domain.New(),
        Epochs:  s.opts.Epochs,
        Created: now,
        Updated: now,
    }}
    if engine == EngineLearning {
        sess.learner = learning.New(s.rand.next())
        sess.learner.Alpha = s.opts.Alpha
        sess.learner.Gamma = s.opts.Gamma
        sess.learner.SetEpsilon(s.opts.TrainEpsilon)
        sess.credit = learning.NewCredit(sess.learner)
    }
    s.sessions[sess.ID] = sess
    s.log.Info().Str("session", sess.ID).Str("engine", string(engine)).Msg("session created")

    cp := sess.Session
    return &cp, nil
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (*Session, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, ok := s.sessions[id]
    if !ok {
        return nil, false
    }
    cp := sess.Session
    return &cp, true
}

// Activate plays the current player's mark at index. Moves that cannot be
// played (occupied cell, finished game, computer's turn, training under
// way) are ignored. Against the computer, its reply is played before
// returning.
func (s *Service) Activate(id string, index int) (*Session, error) {
    return s.update(id, func(sess *session) bool {
        if !sess.AcceptsHumanMove() {
            return false
        }
        if err := sess.Game.Play(index); err != nil {
            return false
        }
        if sess.Mode == ModePvP {
            return true
        }
        if sess.credit != nil && !sess.busy {
            sess.credit.Opponent(sess.Game.Board)
        }
        s.aiMoveLocked(sess)
        return true
    })
}

// RequestAIMove lets the computer play if it is its turn.
func (s *Service) RequestAIMove(id string) (*Session, error) {
    return s.update(id, s.aiMoveLocked)
}

// Restart clears the board. Learned values are kept.
func (s *Service) Restart(id string) (*Session, error) {
    return s.update(id, func(sess *session) bool {
        s.restartLocked(sess)
        return true
    })
}

// SetMode switches between player-vs-player and player-vs-computer and
// restarts the game. Enabling the computer on a learning session trains it
// first; human moves are ignored until training has finished. Asking for
// pvai again on a trained learning session starts another run on top of
// the values learned so far; only a run still in progress is left alone.
func (s *Service) SetMode(id string, mode Mode) (*Session, error) {
    if _, err := ParseMode(string(mode)); err != nil {
        return nil, err
    }
    return s.update(id, func(sess *session) bool {
        if mode == ModePvAI && sess.Mode == ModePvAI && sess.Training {
            return false
        }
        sess.Mode = mode
        s.restartLocked(sess)
        if sess.learner == nil {
            return true
        }
        if mode == ModePvP {
            s.stopTrainingLocked(sess)
            return true
        }
        s.startTrainingLocked(sess)
        return true
    })
}

// ErrBusy is returned by Values while the learner is training.
var ErrBusy = errors.New("session is training")

// Values returns the learner's value row for the current board of a
// learning session. ok is false for minimax sessions.
func (s *Service) Values(id string) (row learning.Row, ok bool, err error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, found := s.sessions[id]
    if !found {
        return row, false, ErrNotFound
    }
    if sess.learner == nil {
        return row, false, nil
    }
    if sess.Training || sess.busy {
        return row, false, ErrBusy
    }
    return *sess.learner.Table.Get(sess.Game.Board.Key()), true, nil
}

// Close cancels any training and removes the session. Subscribers are
// disconnected.
func (s *Service) Close(id string) error {
    s.mu.Lock()
    sess, ok := s.sessions[id]
    if !ok {
        s.mu.Unlock()
        return ErrNotFound
    }
    s.stopTrainingLocked(sess)
    delete(s.sessions, id)
    subs := s.subs[id]
    delete(s.subs, id)
    s.mu.Unlock()

    for sub := range subs {
        sub.close()
    }
    s.log.Info().Str("session", id).Msg("session closed")
    return nil
}

// Subscribe registers a subscriber for a session. Returns a channel and an
// unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.sessions[id]; !ok {
        return nil, nil, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

// update runs fn on the session under the lock. When fn reports a change
// the session is stamped and broadcast.
func (s *Service) update(id string, fn func(*session) bool) (*Session, error) {
    s.mu.Lock()
    sess, ok := s.sessions[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if !fn(sess) {
        cp := sess.Session
        s.mu.Unlock()
        return &cp, nil
    }
    sess.Updated = time.Now()
    cp := sess.Session
    payload := s.render(cp)
    subs := s.copySubsLocked(id)
    s.mu.Unlock()

    s.fanOut(id, payload, subs)
    return &cp, nil
}

// aiMoveLocked plays the computer's move if it is the computer's turn.
func (s *Service) aiMoveLocked(sess *session) bool {
    g := &sess.Game
    if sess.Mode != ModePvAI || sess.Training || sess.busy || g.Over() || g.Turn != AISide {
        return false
    }

    var (
        move int
        err  error
    )
    switch sess.Engine {
    case EngineMinimax:
        move, err = minimax.BestMove(g.Board, AISide)
    case EngineLearning:
        move, err = sess.learner.Act(g.Board)
    }
    if err != nil {
        s.log.Error().Err(err).Str("session", sess.ID).Msg("engine failed to move")
        return false
    }

    prev := g.Board
    if err := g.Play(move); err != nil {
        s.log.Error().Err(err).Str("session", sess.ID).Int("cell", move).Msg("engine chose an invalid move")
        return false
    }
    if sess.credit != nil {
        sess.credit.Own(prev, move, g.Board)
    }
    s.log.Debug().Str("session", sess.ID).Str("engine", string(sess.Engine)).Int("cell", move).Msg("computer moved")
    return true
}

func (s *Service) restartLocked(sess *session) {
    sess.Game = domain.New()
    if sess.credit != nil {
        sess.credit.Reset()
    }
}

func (s *Service) startTrainingLocked(sess *session) {
    s.stopTrainingLocked(sess)

    ctx, cancel := context.WithCancel(context.Background())
    prev := sess.done
    done := make(chan struct{})
    sess.run++
    run, id := sess.run, sess.ID
    sess.cancel, sess.done = cancel, done
    sess.Training, sess.Ready, sess.Trained = true, false, 0
    sess.busy = true

    tr := training.New(sess.learner, s.rand.next(), s.log.With().Str("session", id).Logger())
    tr.TrainEpsilon = s.opts.TrainEpsilon
    tr.PlayEpsilon = s.opts.PlayEpsilon
    tr.OnEpisode = func(ep training.Episode) {
        if n := ep.Index + 1; n%100 == 0 {
            s.progress(id, run, n)
        }
    }
    tr.OnReady = func(st training.Stats) {
        s.finishTraining(id, run, st.Episodes, true)
    }
    epochs := s.opts.Epochs

    go func() {
        defer close(done)
        // the previous run may still be inside an episode
        if prev != nil {
            <-prev
        }
        st, err := tr.Train(ctx, epochs)
        if err != nil {
            // the learner is released only now that Train has returned
            s.finishTraining(id, run, st.Episodes, false)
        }
    }()
}

func (s *Service) stopTrainingLocked(sess *session) {
    if sess.cancel != nil {
        sess.cancel()
        sess.cancel = nil
    }
    sess.Training = false
}

// progress records training progress of run and broadcasts it.
func (s *Service) progress(id string, run, trained int) {
    _, _ = s.update(id, func(sess *session) bool {
        if sess.run != run || !sess.Training {
            return false
        }
        sess.Trained = trained
        return true
    })
}

func (s *Service) finishTraining(id string, run, trained int, ok bool) {
    _, _ = s.update(id, func(sess *session) bool {
        if sess.run != run {
            return false
        }
        sess.Training = false
        sess.Ready = ok
        sess.Trained = trained
        sess.cancel = nil
        sess.busy = false
        s.log.Info().Str("session", id).Bool("ready", ok).Int("episodes", trained).Msg("training done")
        return true
    })
}

func (s *Service) fanOut(id string, payload []byte, subs map[*subscriber]struct{}) {
    var toDrop []*subscriber
    // Fan-out; drop slow subscribers by closing and marking for deletion
    for sub := range subs {
        if !sub.send(payload) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
    }
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
