package main

import (
    "fmt"
    "io"
    "strings"

    "github.com/muesli/termenv"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/learning"
)

// painter renders sessions to a terminal.
type painter struct {
    out *termenv.Output
    x   termenv.Color
    o   termenv.Color
}

func newPainter(w io.Writer) *painter {
    out := termenv.NewOutput(w)
    return &painter{
        out: out,
        x:   out.Color("#ef4444"),
        o:   out.Color("#3b82f6"),
    }
}

func (p *painter) mark(c domain.Cell, highlight bool) string {
    var s termenv.Style
    switch c {
    case domain.X:
        s = p.out.String("X").Foreground(p.x).Bold()
    case domain.O:
        s = p.out.String("O").Foreground(p.o).Bold()
    default:
        return " "
    }
    if highlight {
        s = s.Reverse()
    }
    return s.String()
}

func (p *painter) board(s app.Session) string {
    var win [domain.Size]bool
    if s.Game.Outcome.Status == domain.Win {
        for _, i := range s.Game.Outcome.Line {
            win[i] = true
        }
    }

    var sb strings.Builder
    for r := 0; r < 3; r++ {
        if r > 0 {
            sb.WriteString("   ---+---+---      ---+---+---\n")
        }
        cells := make([]string, 3)
        hints := make([]string, 3)
        for c := 0; c < 3; c++ {
            i := r*3 + c
            cells[c] = p.mark(s.Game.Board[i], win[i])
            hints[c] = " "
            if s.Game.Board[i] == domain.Empty {
                hints[c] = p.out.String(fmt.Sprint(i + 1)).Faint().String()
            }
        }
        fmt.Fprintf(&sb, "    %s | %s | %s        %s | %s | %s\n", cells[0], cells[1], cells[2], hints[0], hints[1], hints[2])
    }
    return sb.String()
}

func (p *painter) status(s app.Session) string {
    switch {
    case s.Training:
        return fmt.Sprintf("training %d/%d", s.Trained, s.Epochs)
    case s.Game.Outcome.Status == domain.Win:
        return "Player " + p.mark(s.Game.Winner(), false) + " wins!"
    case s.Game.Outcome.Status == domain.Draw:
        return "It's a draw!"
    default:
        return "turn: " + p.mark(s.Game.Turn, false)
    }
}

func (p *painter) values(row learning.Row, b domain.Board) string {
    var sb strings.Builder
    for r := 0; r < 3; r++ {
        for c := 0; c < 3; c++ {
            i := r*3 + c
            if b[i] != domain.Empty {
                fmt.Fprintf(&sb, " %7s", p.mark(b[i], false))
                continue
            }
            fmt.Fprintf(&sb, " %7.3f", row[i])
        }
        sb.WriteByte('\n')
    }
    return sb.String()
}
