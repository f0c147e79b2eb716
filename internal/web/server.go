package web

import (
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/logger"
)

// NewServer wires routes and returns an http.Handler. Session broadcasts
// are rendered as board fragments.
func NewServer(s *app.Service, log zerolog.Logger) http.Handler {
    r := chi.NewRouter()
    r.Use(middleware.Recoverer)
    r.Use(logger.NewMiddleware(log))

    h := &handlers{svc: s, tpl: loadTemplates()}
    s.SetRenderer(h.renderBoard)

    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Get("/board", h.board)
        r.Post("/play", h.play)
        r.Post("/ai", h.ai)
        r.Post("/restart", h.restart)
        r.Post("/mode", h.mode)
        r.Get("/events", h.events)
    })
    return r
}
