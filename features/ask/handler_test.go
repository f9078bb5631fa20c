package ask

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/backend/internal/adapter/gemini"
	"studymate/backend/internal/vector"
)

var errGenerationStub = fmt.Errorf("%w: quota exhausted", gemini.ErrGeneration)

func newTestHandler(gen Generator) *Handler {
	svc := NewService(vector.NewStore(), &stubEmbedder{}, gen, 3, nil)
	return NewHandler(svc, 0)
}

func askRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAsk_EmptyQuestion(t *testing.T) {
	h := newTestHandler(&scriptedGenerator{})

	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`} {
		w := httptest.NewRecorder()
		h.Ask(w, askRequest(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp["error"])
	}
}

func TestAsk_MalformedBody(t *testing.T) {
	h := newTestHandler(&scriptedGenerator{})
	w := httptest.NewRecorder()
	h.Ask(w, askRequest(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsk_StreamsFragments(t *testing.T) {
	gen := &scriptedGenerator{fragments: []string{
		"**Direct Answer:** Osmosis moves water. ",
		"**Importance:** It keeps cells alive. ",
		"**Real-World Example:** Raisins swell in water.",
	}}
	h := newTestHandler(gen)

	w := httptest.NewRecorder()
	h.Ask(w, askRequest(`{"question":"What is osmosis?","level":"Beginner","emotion":"neutral"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Direct Answer")
	assert.Contains(t, body, "Importance")
	assert.Contains(t, body, "Real-World Example")
}

func TestAsk_DefaultsLevelAndEmotion(t *testing.T) {
	gen := &scriptedGenerator{fragments: []string{"ok"}}
	h := newTestHandler(gen)

	w := httptest.NewRecorder()
	h.Ask(w, askRequest(`{"question":"Why is the sky blue?"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, gen.lastPrompt, "Beginner")
	assert.Contains(t, gen.lastPrompt, "interesting or surprising")
}

func TestAsk_GenerationFailureBeforeStream(t *testing.T) {
	h := newTestHandler(&scriptedGenerator{err: errGenerationStub})

	w := httptest.NewRecorder()
	h.Ask(w, askRequest(`{"question":"q"}`))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// gatedGenerator feeds fragments through an unbuffered channel the test
// controls, so delivery timing is observable.
type gatedGenerator struct {
	out chan string
}

func (g *gatedGenerator) Stream(context.Context, string) (<-chan string, error) {
	return g.out, nil
}

// notifyingRecorder signals the first body write.
type notifyingRecorder struct {
	*httptest.ResponseRecorder
	mu         sync.Mutex
	firstWrite chan struct{}
	once       sync.Once
}

func (r *notifyingRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.ResponseRecorder.Write(p)
	r.once.Do(func() { close(r.firstWrite) })
	return n, err
}

func (r *notifyingRecorder) Flush() {}

func TestAsk_FirstFragmentBeforeStreamEnds(t *testing.T) {
	gen := &gatedGenerator{out: make(chan string)}
	h := newTestHandler(gen)

	rec := &notifyingRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		firstWrite:       make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Ask(rec, askRequest(`{"question":"q"}`))
	}()

	gen.out <- "first fragment"

	select {
	case <-rec.firstWrite:
		// Fragment reached the response while the stream is still open:
		// the handler is not buffering the full answer.
	case <-time.After(2 * time.Second):
		t.Fatal("first fragment was not written before the stream ended")
	}

	gen.out <- " second"
	close(gen.out)
	<-done

	assert.Equal(t, "first fragment second", rec.Body.String())
}
