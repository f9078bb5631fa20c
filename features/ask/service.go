package ask

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"studymate/backend/internal/middleware"
	"studymate/backend/internal/vector"
)

type Generator interface {
	Stream(ctx context.Context, prompt string) (<-chan string, error)
}

type Service struct {
	store     *vector.Store
	embedder  vector.Embedder
	generator Generator
	topK      int
	logger    *QueryLogger
}

func NewService(store *vector.Store, embedder vector.Embedder, generator Generator, topK int, logger *QueryLogger) *Service {
	return &Service{
		store:     store,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// Answer retrieves the passages nearest to the question from the
// current index snapshot, composes the tutoring prompt and starts the
// model stream. With no document ingested yet the answer is simply
// ungrounded; that is not an error.
func (s *Service) Answer(ctx context.Context, question string, level Level, emotion Emotion) (<-chan string, error) {
	start := time.Now()

	var passages []string
	if index := s.store.Load(); index != nil {
		var err error
		passages, err = index.Query(ctx, question, s.embedder, s.topK)
		if err != nil {
			return nil, err
		}
	}

	prompt := ComposePrompt(question, level, emotion, strings.Join(passages, "\n"))

	fragments, err := s.generator.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "answer stream started", "level", string(level), "emotion", string(emotion), "passages", len(passages))
	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Question:      question,
			Level:         string(level),
			Emotion:       string(emotion),
			Grounded:      len(passages) > 0,
			NumPassages:   len(passages),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}
	return fragments, nil
}
