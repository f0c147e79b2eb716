// Command ttt plays tic-tac-toe in the terminal against a friend, the
// minimax engine or a self-trained learner.
package main

import (
    "bufio"
    "context"
    "flag"
    "fmt"
    "io"
    "os"
    "strconv"
    "strings"

    "github.com/pkg/errors"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/config"
    "github.com/jaminalder/tictactoe-ai/internal/logger"
)

const help = `commands:
  1-9        place your mark
  ai         let the computer move
  r          restart
  m pvp|pvai switch mode
  v          show learned values for the board
  q          quit`

func main() {
    engine := flag.String("engine", "minimax", "computer opponent: minimax or learning")
    mode := flag.String("mode", "pvai", "pvp or pvai")
    flag.Parse()

    if err := run(context.Background(), os.Stdin, os.Stdout, *engine, *mode); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func run(ctx context.Context, in io.Reader, w io.Writer, engineName, modeName string) error {
    cfg, err := config.Load()
    if err != nil {
        return err
    }
    log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
    if err != nil {
        return err
    }
    // keep the board readable: only warnings reach the terminal
    log = log.Level(max(zerolog.WarnLevel, log.GetLevel()))

    engine, err := app.ParseEngine(engineName)
    if err != nil {
        return err
    }
    mode, err := app.ParseMode(modeName)
    if err != nil {
        return err
    }

    svc := app.NewService(app.WithLogger(log), app.WithOptions(cfg.ServiceOptions()))
    sess, err := svc.CreateSession(engine)
    if err != nil {
        return err
    }
    defer svc.Close(sess.ID)

    p := newPainter(w)
    c := &console{svc: svc, id: sess.ID, w: w, p: p}
    if err := c.setMode(ctx, mode); err != nil {
        return err
    }

    fmt.Fprintln(w, help)
    c.show()
    sc := bufio.NewScanner(in)
    for fmt.Fprint(w, "> "); sc.Scan(); fmt.Fprint(w, "> ") {
        quit, err := c.exec(ctx, strings.Fields(sc.Text()))
        if err != nil {
            fmt.Fprintln(w, err)
            continue
        }
        if quit {
            return nil
        }
    }
    return sc.Err()
}

type console struct {
    svc *app.Service
    id  string
    w   io.Writer
    p   *painter
}

func (c *console) exec(ctx context.Context, args []string) (bool, error) {
    if len(args) == 0 {
        return false, nil
    }
    var err error
    switch args[0] {
    case "q", "quit":
        return true, nil
    case "h", "help":
        fmt.Fprintln(c.w, help)
        return false, nil
    case "ai":
        _, err = c.svc.RequestAIMove(c.id)
    case "r", "restart":
        _, err = c.svc.Restart(c.id)
    case "m", "mode":
        if len(args) < 2 {
            return false, errors.New("usage: m pvp|pvai")
        }
        mode, perr := app.ParseMode(args[1])
        if perr != nil {
            return false, perr
        }
        err = c.setMode(ctx, mode)
    case "v", "values":
        return false, c.values()
    default:
        n, perr := strconv.Atoi(args[0])
        if perr != nil || n < 1 || n > 9 {
            return false, errors.Errorf("unknown command %q", args[0])
        }
        _, err = c.svc.Activate(c.id, n-1)
    }
    if err != nil {
        return false, err
    }
    c.show()
    return false, nil
}

// setMode switches mode and, for a learning opponent, blocks until training
// has finished.
func (c *console) setMode(ctx context.Context, mode app.Mode) error {
    ctx, cancel := context.WithCancel(ctx)
    defer cancel()
    updates, unsub, err := c.svc.Subscribe(ctx, c.id)
    if err != nil {
        return err
    }
    defer unsub()

    s, err := c.svc.SetMode(c.id, mode)
    if err != nil {
        return err
    }
    for s.Training {
        fmt.Fprintf(c.w, "\r%s", c.p.status(*s))
        select {
        case <-ctx.Done():
            return ctx.Err()
        case _, ok := <-updates:
            if !ok {
                // dropped as a slow reader; poll instead
                updates, unsub, err = c.svc.Subscribe(ctx, c.id)
                if err != nil {
                    return err
                }
                defer unsub()
            }
        }
        var found bool
        if s, found = c.svc.Get(c.id); !found {
            return app.ErrNotFound
        }
    }
    if s.Ready {
        fmt.Fprintf(c.w, "\rtrained on %d games\n", s.Trained)
    }
    return nil
}

func (c *console) values() error {
    s, ok := c.svc.Get(c.id)
    if !ok {
        return app.ErrNotFound
    }
    row, ok, err := c.svc.Values(c.id)
    if err != nil {
        return err
    }
    if !ok {
        return errors.New("values are only kept by the learning engine")
    }
    fmt.Fprint(c.w, c.p.values(row, s.Game.Board))
    return nil
}

func (c *console) show() {
    s, ok := c.svc.Get(c.id)
    if !ok {
        return
    }
    fmt.Fprintf(c.w, "\n%s\n%s\n", c.p.board(*s), c.p.status(*s))
}
