package logger

import (
    "bytes"
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestNewRejectsBadSettings(t *testing.T) {
    _, err := New(nil, "loud", FormatJSON)
    require.Error(t, err)
    _, err = New(nil, "info", "xml")
    require.Error(t, err)
}

func TestNewHonoursLevel(t *testing.T) {
    var buf bytes.Buffer
    l, err := New(&buf, "warn", FormatJSON)
    require.NoError(t, err)
    l.Info().Msg("hidden")
    l.Warn().Msg("shown")
    require.NotContains(t, buf.String(), "hidden")
    require.Contains(t, buf.String(), `"message":"shown"`)
}

func TestMiddlewareCarriesLogger(t *testing.T) {
    var buf bytes.Buffer
    base, err := New(&buf, "debug", FormatJSON)
    require.NoError(t, err)

    h := NewMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        FromContext(r.Context()).Info().Msg("inside")
        w.WriteHeader(http.StatusTeapot)
    }))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest("GET", "/game", nil))

    require.Equal(t, http.StatusTeapot, rr.Code)
    out := buf.String()
    require.Contains(t, out, `"message":"inside"`)
    require.Contains(t, out, `"path":"/game"`)
    require.Contains(t, out, `"request_id":`)
    require.Contains(t, out, `"status":418`)
}

func TestFromContextWithoutLogger(t *testing.T) {
    l := FromContext(context.Background())
    require.NotNil(t, l)
    l.Info().Msg("dropped")
}
