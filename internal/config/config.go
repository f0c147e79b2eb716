// Package config reads settings from the environment, after loading an
// optional .env file.
package config

import (
    "os"
    "strconv"

    "github.com/joho/godotenv"
    "github.com/pkg/errors"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/learning"
    "github.com/jaminalder/tictactoe-ai/internal/training"
)

// Config holds every setting of the server and the terminal client.
type Config struct {
    Addr      string
    LogLevel  string
    LogFormat string

    Epochs       int
    TrainEpsilon float64
    PlayEpsilon  float64
    Alpha        float64
    Gamma        float64
    Seed         uint64
}

// Default returns the built-in settings.
func Default() Config {
    return Config{
        Addr:         ":8080",
        LogLevel:     "info",
        LogFormat:    "console",
        Epochs:       training.DefaultEpochs,
        TrainEpsilon: learning.TrainingEpsilon,
        PlayEpsilon:  learning.PlayEpsilon,
        Alpha:        learning.DefaultAlpha,
        Gamma:        learning.DefaultGamma,
    }
}

// Load reads the given .env files (".env" when none are named; missing files
// are skipped) and then the TTT_* environment variables.
func Load(files ...string) (Config, error) {
    if len(files) == 0 {
        files = []string{".env"}
    }
    for _, f := range files {
        if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
            return Config{}, errors.Wrapf(err, "load %s", f)
        }
    }
    return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
    c := Default()
    r := reader{lookup: lookup}
    r.str("TTT_ADDR", &c.Addr)
    r.str("TTT_LOG_LEVEL", &c.LogLevel)
    r.str("TTT_LOG_FORMAT", &c.LogFormat)
    r.int("TTT_TRAIN_EPOCHS", &c.Epochs)
    r.float("TTT_TRAIN_EPSILON", &c.TrainEpsilon)
    r.float("TTT_PLAY_EPSILON", &c.PlayEpsilon)
    r.float("TTT_ALPHA", &c.Alpha)
    r.float("TTT_GAMMA", &c.Gamma)
    r.uint("TTT_SEED", &c.Seed)
    if r.err != nil {
        return Config{}, r.err
    }
    return c, c.Validate()
}

// Validate checks ranges.
func (c Config) Validate() error {
    if c.Epochs < 0 {
        return errors.Errorf("TTT_TRAIN_EPOCHS: %d is negative", c.Epochs)
    }
    for name, p := range map[string]float64{
        "TTT_TRAIN_EPSILON": c.TrainEpsilon,
        "TTT_PLAY_EPSILON":  c.PlayEpsilon,
        "TTT_ALPHA":         c.Alpha,
        "TTT_GAMMA":         c.Gamma,
    } {
        if p < 0 || p > 1 {
            return errors.Errorf("%s: %v is outside [0, 1]", name, p)
        }
    }
    return nil
}

// ServiceOptions converts the learning settings for app.NewService.
func (c Config) ServiceOptions() app.Options {
    return app.Options{
        Epochs:       c.Epochs,
        Alpha:        c.Alpha,
        Gamma:        c.Gamma,
        TrainEpsilon: c.TrainEpsilon,
        PlayEpsilon:  c.PlayEpsilon,
        Seed:         c.Seed,
    }
}

// reader keeps the first parse error.
type reader struct {
    lookup func(string) (string, bool)
    err    error
}

func (r *reader) get(key string) (string, bool) {
    if r.err != nil {
        return "", false
    }
    v, ok := r.lookup(key)
    return v, ok && v != ""
}

func (r *reader) str(key string, dst *string) {
    if v, ok := r.get(key); ok {
        *dst = v
    }
}

func (r *reader) int(key string, dst *int) {
    if v, ok := r.get(key); ok {
        n, err := strconv.Atoi(v)
        if err != nil {
            r.err = errors.Wrap(err, key)
            return
        }
        *dst = n
    }
}

func (r *reader) uint(key string, dst *uint64) {
    if v, ok := r.get(key); ok {
        n, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            r.err = errors.Wrap(err, key)
            return
        }
        *dst = n
    }
}

func (r *reader) float(key string, dst *float64) {
    if v, ok := r.get(key); ok {
        f, err := strconv.ParseFloat(v, 64)
        if err != nil {
            r.err = errors.Wrap(err, key)
            return
        }
        *dst = f
    }
}
