package app

import (
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-ai/internal/learning"
    "github.com/jaminalder/tictactoe-ai/internal/training"
)

// Options tune a Service. Every field is used as given, so start from
// DefaultOptions to change only some of them.
type Options struct {
    Epochs       int
    Alpha        float64
    Gamma        float64
    TrainEpsilon float64
    PlayEpsilon  float64
    Seed         uint64
}

// Option configures a Service.
type Option func(*Service)

// WithOptions replaces the learning and training parameters.
func WithOptions(o Options) Option {
    return func(s *Service) {
        s.opts = o
        s.rand.seed = o.Seed
    }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
    return func(s *Service) { s.log = log }
}

// WithRenderer sets the function producing broadcast payloads.
func WithRenderer(renderer func(Session) []byte) Option {
    return func(s *Service) {
        if renderer != nil {
            s.render = renderer
        }
    }
}

// DefaultOptions returns the parameters used when WithOptions is not given.
func DefaultOptions() Options {
    return Options{
        Epochs:       training.DefaultEpochs,
        Alpha:        learning.DefaultAlpha,
        Gamma:        learning.DefaultGamma,
        TrainEpsilon: learning.TrainingEpsilon,
        PlayEpsilon:  learning.PlayEpsilon,
    }
}
