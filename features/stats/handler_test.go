package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/backend/internal/vector"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestGetStats_NoIndex(t *testing.T) {
	h := NewHandler(vector.NewStore())

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest("GET", "/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Ready)
	assert.Zero(t, resp.Data.Passages)
}

func TestGetStats_WithIndex(t *testing.T) {
	store := vector.NewStore()
	require.NoError(t, store.Replace(func() (*vector.Index, error) {
		return vector.Build(context.Background(), []string{"a", "b"}, fixedEmbedder{})
	}))
	h := NewHandler(store)

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest("GET", "/stats", nil))

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Ready)
	assert.Equal(t, 2, resp.Data.Passages)
	assert.Equal(t, 3, resp.Data.Dimension)
}
