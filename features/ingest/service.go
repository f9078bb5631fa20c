package ingest

import (
	"context"
	"log/slog"

	"studymate/backend/internal/loader"
	"studymate/backend/internal/text"
	"studymate/backend/internal/vector"
)

type Service struct {
	store        *vector.Store
	embedder     vector.Embedder
	chunkSize    int
	chunkOverlap int
}

func NewService(store *vector.Store, embedder vector.Embedder, chunkSize, chunkOverlap int) *Service {
	return &Service{
		store:        store,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest loads the document at path, chunks and embeds it, and installs
// the result as the new process-wide index. The swap happens only on
// full success; any failure leaves the previous index untouched. A
// concurrent ingestion is rejected with vector.ErrBusy.
func (s *Service) Ingest(ctx context.Context, path, filename string) error {
	kind, err := loader.KindFromFilename(filename)
	if err != nil {
		return err
	}

	return s.store.Replace(func() (*vector.Index, error) {
		content, err := loader.Load(path, kind)
		if err != nil {
			return nil, err
		}

		passages, err := text.Split(content, s.chunkSize, s.chunkOverlap)
		if err != nil {
			return nil, err
		}

		// A document with no extractable text yields an empty index;
		// questions then degrade to ungrounded answering.
		index, err := vector.Build(ctx, passages, s.embedder)
		if err != nil {
			return nil, err
		}

		slog.InfoContext(ctx, "document indexed", "filename", filename, "kind", string(kind), "passages", index.Len())
		return index, nil
	})
}
