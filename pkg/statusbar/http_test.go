package statusbar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchmarny/ibar/pkg/menu"
	"github.com/mchmarny/ibar/pkg/server"
)

func newMux(m *Manager) *http.ServeMux {
	mux := http.NewServeMux()
	for pattern, h := range m.Routes() {
		mux.Handle(pattern, h)
	}
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHTTPRegisterAndList(t *testing.T) {
	m := newManager(t, 1)
	mux := newMux(m)

	rec := do(t, mux, http.MethodPost, "/items", `{"title":"A","command":"true"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodPost, "/items", `{"title":"B","command":"sh","args":["-c","exit 0"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got menu.Menu
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, []string{"A", menu.DefaultMoreTitle}, rowTitles(got.Items))
	require.Equal(t, "B", got.Items[1].Items[0].Title)
}

func TestHTTPRegisterValidation(t *testing.T) {
	mux := newMux(newManager(t, 1))

	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/items", `{"title":"A"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/items", `{`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/items", `{"title":"A","command":"x","extra":1}`).Code)
	require.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodPut, "/items", "").Code)
}

func TestHTTPRemove(t *testing.T) {
	m := newManager(t, 3)
	m.AddItem("A", nil, nil)
	m.AddItem("B", nil, nil)
	m.AddItem("A", nil, nil)
	mux := newMux(m)

	require.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/items?title=A", "").Code)
	require.Equal(t, []string{"B"}, rowTitles(m.Snapshot().Items))

	require.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/items?title=missing", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodDelete, "/items", "").Code)
}

func TestHTTPInvoke(t *testing.T) {
	m := newManager(t, 1)
	called := 0
	m.AddItem("A", func() { called++ }, nil)
	m.AddItem("B", Command{Name: "sh", Args: []string{"-c", "exit 1"}}, nil)
	mux := newMux(m)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/invoke?path=/0", "").Code)
	require.Equal(t, 1, called)

	require.Equal(t, http.StatusNotFound, do(t, mux, http.MethodPost, "/invoke?path=/5", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/invoke?path=/1", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/invoke", "").Code)
	require.Equal(t, http.StatusInternalServerError, do(t, mux, http.MethodPost, "/invoke?path=/1/0", "").Code)
}

func TestHTTPInvokeOutlivesWriteTimeout(t *testing.T) {
	m := newManager(t, 1)
	m.AddItem("slow", func() { time.Sleep(400 * time.Millisecond) }, nil)

	opts := append([]server.Option{
		server.WithPort(0),
		server.WithWriteTimeout(100 * time.Millisecond),
	}, m.Handlers()...)
	srv := server.New(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()
	require.Eventually(t, srv.IsRunning, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post("http://"+srv.Addr()+"/invoke?path=/0", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","path":"/0"}`, string(body))
}
