package menu

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Menu represents the rendered root menu.
type Menu struct {
	// Title is the status bar title
	Title string `json:"title"`

	// Version of the app rendering the menu
	Version string `json:"version,omitempty"`

	// Capacity is the number of rows shown before overflow
	Capacity int `json:"capacity"`

	// Items is the list of rendered rows
	Items []Item `json:"items"`
}

// Handler returns an HTTP handler that responds with the current menu as JSON.
// The snapshot func is called once per request.
func Handler(snapshot func() *Menu) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		m := snapshot()
		if m.Items == nil {
			m.Items = []Item{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(m); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}

		slog.Debug("menu response sent",
			"method", r.Method,
			"url", r.URL.Path,
			"items", len(m.Items),
		)
	})
}
