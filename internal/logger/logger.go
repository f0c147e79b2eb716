package logger

import (
    "context"
    "io"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "github.com/pkg/errors"
    "github.com/rs/zerolog"
)

// Formats accepted by New.
const (
    FormatConsole = "console"
    FormatJSON    = "json"
)

// New returns a logger writing to w (stdout when nil) at the named level.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
    if w == nil {
        w = os.Stdout
    }
    lvl, err := zerolog.ParseLevel(strings.ToLower(level))
    if err != nil {
        return zerolog.Nop(), errors.Wrapf(err, "log level %q", level)
    }
    switch strings.ToLower(format) {
    case "", FormatConsole:
        w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
    case FormatJSON:
    default:
        return zerolog.Nop(), errors.Errorf("log format %q", format)
    }
    return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// NewMiddleware attaches a request-scoped logger to every request and logs
// the response status once the handler returns.
func NewMiddleware(base zerolog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            start := time.Now()
            l := base.With().
                Str("request_id", uuid.NewString()).
                Str("method", r.Method).
                Str("path", r.URL.Path).
                Logger()
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            next.ServeHTTP(ww, r.WithContext(NewContext(r.Context(), l)))
            l.Debug().
                Int("status", ww.Status()).
                Dur("elapsed", time.Since(start)).
                Msg("request")
        })
    }
}

// NewContext returns ctx carrying l.
func NewContext(ctx context.Context, l zerolog.Logger) context.Context {
    return l.WithContext(ctx)
}

// FromContext returns the logger carried by ctx, or a disabled one.
func FromContext(ctx context.Context) *zerolog.Logger {
    return zerolog.Ctx(ctx)
}
