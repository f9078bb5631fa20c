package stats

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"studymate/backend/internal/vector"
)

type Handler struct {
	store *vector.Store
}

func NewHandler(store *vector.Store) *Handler {
	return &Handler{store: store}
}

type StatsResponse struct {
	Ready     bool `json:"ready"`
	Passages  int  `json:"passages"`
	Dimension int  `json:"dimension"`
}

// GetStats reports the state of the current index snapshot. Before the
// first upload there is no index and ready is false.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	if index := h.store.Load(); index != nil {
		resp = StatsResponse{
			Ready:     true,
			Passages:  index.Len(),
			Dimension: index.Dimension(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
