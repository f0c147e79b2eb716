package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/config"
    "github.com/jaminalder/tictactoe-ai/internal/logger"
    "github.com/jaminalder/tictactoe-ai/internal/web"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        os.Stderr.WriteString(err.Error() + "\n")
        os.Exit(2)
    }
    log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
    if err != nil {
        os.Stderr.WriteString(err.Error() + "\n")
        os.Exit(2)
    }

    svc := app.NewService(
        app.WithLogger(log),
        app.WithOptions(cfg.ServiceOptions()),
    )
    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServer(svc, log),
        ReadHeaderTimeout: 5 * time.Second,
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = srv.Shutdown(shutdownCtx)
    }()

    log.Info().Str("addr", cfg.Addr).Int("epochs", cfg.Epochs).Msg("listening")
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        log.Error().Err(err).Msg("server stopped")
        os.Exit(1)
    }
}
