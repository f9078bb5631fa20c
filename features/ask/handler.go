package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"studymate/backend/internal/adapter/gemini"
	"studymate/backend/internal/middleware"
	"studymate/backend/internal/vector"
)

type Handler struct {
	service     *Service
	streamDelay time.Duration
}

func NewHandler(service *Service, streamDelay time.Duration) *Handler {
	return &Handler{service: service, streamDelay: streamDelay}
}

// Ask answers a learner's question as a streamed plain-text body. Each
// model fragment is written and flushed as soon as it arrives; errors
// before the first fragment get a JSON error response, errors after it
// simply end the stream early.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		Level    string `json:"level"`
		Emotion  string `json:"emotion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
		return
	}

	fragments, err := h.service.Answer(r.Context(), req.Question, ParseLevel(req.Level), ParseEmotion(req.Emotion))
	if err != nil {
		switch {
		case errors.Is(err, gemini.ErrGeneration):
			h.writeError(r.Context(), w, "GENERATION_ERROR", "Model call failed", http.StatusBadGateway)
		case errors.Is(err, vector.ErrEmbedding):
			h.writeError(r.Context(), w, "EMBEDDING_ERROR", "Failed to embed question", http.StatusInternalServerError)
		default:
			slog.ErrorContext(r.Context(), "answer failed", "error", err)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	for fragment := range fragments {
		if _, err := w.Write([]byte(fragment)); err != nil {
			// Client went away; context cancellation stops the producer.
			return
		}
		if canFlush {
			flusher.Flush()
		}
		if h.streamDelay > 0 {
			select {
			case <-time.After(h.streamDelay):
			case <-r.Context().Done():
				return
			}
		}
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
