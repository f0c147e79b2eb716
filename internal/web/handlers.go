package web

import (
    "bufio"
    "bytes"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/logger"
)

type handlers struct {
    svc *app.Service
    tpl *templates
}

func (h *handlers) renderBoard(s app.Session) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(s))
}

func (h *handlers) writeBoard(w http.ResponseWriter, r *http.Request, s *app.Session, err error) {
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        logger.FromContext(r.Context()).Warn().Err(err).Msg("bad request")
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*s))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    if err := r.ParseForm(); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    name := r.Form.Get("engine")
    if name == "" {
        name = string(app.EngineMinimax)
    }
    engine, err := app.ParseEngine(name)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    s, err := h.svc.CreateSession(engine)
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+s.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    s, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.game, "", newBoardView(*s)))
}

func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
    s, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, r, s, nil)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if err := r.ParseForm(); err != nil {
        h.writeBoard(w, r, nil, err)
        return
    }
    cell, err := strconv.Atoi(r.Form.Get("cell"))
    if err != nil {
        // not a cell: nothing to play
        cell = -1
    }
    s, err := h.svc.Activate(id, cell)
    h.writeBoard(w, r, s, err)
}

func (h *handlers) ai(w http.ResponseWriter, r *http.Request) {
    s, err := h.svc.RequestAIMove(chi.URLParam(r, "id"))
    h.writeBoard(w, r, s, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
    s, err := h.svc.Restart(chi.URLParam(r, "id"))
    h.writeBoard(w, r, s, err)
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if err := r.ParseForm(); err != nil {
        h.writeBoard(w, r, nil, err)
        return
    }
    mode, err := app.ParseMode(r.Form.Get("mode"))
    if err != nil {
        h.writeBoard(w, r, nil, err)
        return
    }
    s, err := h.svc.SetMode(id, mode)
    if err == nil {
        logger.FromContext(r.Context()).Info().Str("session", id).Str("mode", string(mode)).Msg("mode changed")
    }
    h.writeBoard(w, r, s, err)
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        return
    }
    defer unsub()
    // heartbeat ticker
    ticker := time.NewTicker(heartbeatInterval)
    defer ticker.Stop()
    // Initial flush of headers
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}

// writeEvent writes one server-sent event. Every line of data gets its own
// data field.
func writeEvent(w io.Writer, event string, data []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    sc := bufio.NewScanner(bytes.NewReader(data))
    for sc.Scan() {
        _, _ = fmt.Fprintf(w, "data: %s\n", sc.Bytes())
    }
    _, _ = io.WriteString(w, "\n")
}
