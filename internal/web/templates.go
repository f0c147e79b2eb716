package web

import (
    "bytes"
    "html/template"
    "strings"

    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "upper": strings.ToUpper,
        "markClass": func(mark string) string {
            switch mark {
            case "x":
                return "text-red-500"
            case "o":
                return "text-blue-500"
            default:
                return ""
            }
        },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <select name="engine">
    <option value="minimax">Minimax</option>
    <option value="learning">Learning</option>
  </select>
  <button>Create</button>
</form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" sse-swap="board" hx-swap="innerHTML">{{template "board" .}}</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

const boardTemplate = `
<div id="board" data-mode="{{.Mode}}" data-engine="{{.Engine}}">
  <div class="turns">
    {{range .Turns}}<span class="turn-box{{if .Active}} turn{{end}}">{{upper .Mark}}</span>{{end}}
  </div>
  {{if .Training}}
  <div class="training">Training {{.Trained}}/{{.Epochs}}</div>
  {{end}}
  <div class="grid">
    {{range .Cells}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" class="cell {{markClass .Mark}}{{if .Win}} bg{{end}}" data-index="{{.Index}}"{{if not .Playable}} disabled{{end}}>{{.Mark}}</button>
      </form>
    {{end}}
  </div>
  <div id="result">{{.Result}}</div>
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button id="restart">Restart</button></form>
  <form hx-post="/game/{{.ID}}/mode" hx-target="#board" hx-swap="outerHTML" method="post">
    <button id="player-vs-player" name="mode" value="pvp">Player vs Player</button>
    <button id="player-vs-ai" name="mode" value="pvai">Player vs AI</button>
  </form>
</div>
`

type cellView struct {
    Index    int
    Mark     string
    Win      bool
    Playable bool
}

type turnView struct {
    Mark   string
    Active bool
}

// boardView is the data rendered by the board template.
type boardView struct {
    ID       string
    Engine   app.Engine
    Mode     app.Mode
    Cells    []cellView
    Turns    []turnView
    Result   string
    Training bool
    Trained  int
    Epochs   int
}

func newBoardView(s app.Session) boardView {
    g := s.Game
    v := boardView{
        ID:       s.ID,
        Engine:   s.Engine,
        Mode:     s.Mode,
        Result:   resultText(g.Outcome),
        Training: s.Training,
        Trained:  s.Trained,
        Epochs:   s.Epochs,
    }
    var win [domain.Size]bool
    if g.Outcome.Status == domain.Win {
        for _, i := range g.Outcome.Line {
            win[i] = true
        }
    }
    accepts := s.AcceptsHumanMove()
    for i, c := range g.Board {
        v.Cells = append(v.Cells, cellView{
            Index:    i,
            Mark:     c.String(),
            Win:      win[i],
            Playable: accepts && c == domain.Empty,
        })
    }
    for _, side := range []domain.Cell{domain.X, domain.O} {
        v.Turns = append(v.Turns, turnView{Mark: side.String(), Active: g.Turn == side})
    }
    return v
}

func resultText(out domain.Outcome) string {
    switch out.Status {
    case domain.Win:
        return "Player " + strings.ToUpper(out.Winner.String()) + " wins!"
    case domain.Draw:
        return "It's a draw!"
    default:
        return ""
    }
}
