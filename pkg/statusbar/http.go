package statusbar

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mchmarny/ibar/pkg/menu"
	"github.com/mchmarny/ibar/pkg/server"
)

// maxBodyBytes caps registration payloads.
const maxBodyBytes = 64 << 10

// Registration is the body of POST /items.
type Registration struct {
	Title   string   `json:"title"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Dir     string   `json:"dir,omitempty"`
}

// Routes returns the control API handlers keyed by mux pattern.
func (m *Manager) Routes() map[string]http.Handler {
	return map[string]http.Handler{
		"GET /menu":     menu.Handler(m.Snapshot),
		"POST /items":   http.HandlerFunc(m.handleAdd),
		"DELETE /items": http.HandlerFunc(m.handleRemove),
		"POST /invoke":  http.HandlerFunc(m.handleInvoke),
	}
}

// Handlers returns the server options that expose the manager over HTTP,
// including health and metrics endpoints.
func (m *Manager) Handlers() []server.Option {
	opts := []server.Option{
		server.WithPrometheusMetrics(m.Gatherer()),
		server.WithSimpleHealth(),
	}
	for pattern, h := range m.Routes() {
		opts = append(opts, server.WithHandler(pattern, h))
	}
	return opts
}

func (m *Manager) handleAdd(w http.ResponseWriter, r *http.Request) {
	var reg Registration
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid registration: %v", err))
		return
	}
	if reg.Title == "" || reg.Command == "" {
		writeError(w, http.StatusBadRequest, "title and command are required")
		return
	}

	m.AddItem(reg.Title, Command{Name: reg.Command, Args: reg.Args}, reg.Dir)

	writeJSON(w, http.StatusCreated, m.Snapshot())
}

func (m *Manager) handleRemove(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title query parameter is required")
		return
	}

	n := m.RemoveItem(title)
	slog.Info("removed menu items", "title", title, "count", n)

	w.WriteHeader(http.StatusNoContent)
}

func (m *Manager) handleInvoke(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	// actions run to completion, so the server write timeout must not cut the reply
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		slog.Warn("failed to clear write deadline", "error", err)
	}

	err := m.Invoke(r.Context(), path)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
	case errors.Is(err, ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnsupportedAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	slog.Error("handling error response",
		"status", status,
		"message", message,
	)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, "error, see logs for details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
