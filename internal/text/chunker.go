package text

import (
	"errors"
	"fmt"
	"iter"
)

var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Passages splits a document into overlapping fixed-size passages.
// Passage i starts at rune offset i*(size-overlap) and spans at most
// size runes; consecutive passages share overlap runes. The returned
// sequence is lazy and can be ranged over more than once.
func Passages(text string, size, overlap int) (iter.Seq[string], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidConfig, overlap, size)
	}

	return func(yield func(string) bool) {
		runes := []rune(text)
		step := size - overlap
		for start := 0; start < len(runes); start += step {
			end := min(start+size, len(runes))
			if !yield(string(runes[start:end])) {
				return
			}
			if end == len(runes) {
				return
			}
		}
	}, nil
}

// Split collects the passage sequence into a slice.
func Split(text string, size, overlap int) ([]string, error) {
	seq, err := Passages(text, size, overlap)
	if err != nil {
		return nil, err
	}
	var passages []string
	for p := range seq {
		passages = append(passages, p)
	}
	return passages, nil
}
