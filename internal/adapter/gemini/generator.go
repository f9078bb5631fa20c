package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

var ErrGeneration = errors.New("generation failed")

// fragmentBuffer bounds how far the producer may run ahead of a slow
// consumer before blocking on the model iterator.
const fragmentBuffer = 16

type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(client *genai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Stream invokes the model in streaming mode and returns a channel of
// text fragments in emission order. The first model step happens before
// Stream returns, so a call that fails without producing any output
// surfaces as ErrGeneration instead of an empty stream. A mid-stream
// failure ends the channel early; fragments already delivered stand.
// Cancelling ctx aborts the underlying model call.
func (g *Generator) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	model := g.client.GenerativeModel(g.model)
	it := model.GenerateContentStream(ctx, genai.Text(prompt))

	first, err := it.Next()
	if err == iterator.Done {
		out := make(chan string)
		close(out)
		return out, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "generation failed before first fragment", "error", err, "model", g.model)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	out := make(chan string, fragmentBuffer)
	go func() {
		defer close(out)

		resp := first
		for {
			if text := fragmentText(resp); text != "" {
				select {
				case out <- text:
				case <-ctx.Done():
					return
				}
			}

			next, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				// Partial output already delivered is not retracted.
				slog.WarnContext(ctx, "generation ended mid-stream", "error", err, "model", g.model)
				return
			}
			resp = next
		}
	}()
	return out, nil
}

func fragmentText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}
