package ttsd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/tts"
)

type fakeTTS struct {
	initialized bool
	closed      bool
	err         error
	lastReq     tts.SynthesizeRequest
}

func (f *fakeTTS) Initialize(tts.Config) error { f.initialized = true; return nil }
func (f *fakeTTS) ListVoices() []tts.Voice     { return tts.AllVoices() }
func (f *fakeTTS) Close() error                { f.closed = true; return nil }
func (f *fakeTTS) IsInitialized() bool         { return f.initialized }

func (f *fakeTTS) Synthesize(ctx context.Context, req tts.SynthesizeRequest) ([]float32, int, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, 0, f.err
	}
	return make([]float32, audio.SampleRate/4), audio.SampleRate, nil
}

func newTestServer(t *testing.T, engine tts.Engine) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Host:       "127.0.0.1",
		Port:       0,
		Engine:     engine,
		EngineConf: tts.DefaultConfig(""),
	})
	require.NoError(t, err)
	return s
}

func TestNewServerRequiresEngine(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestHealthReportsOK(t *testing.T) {
	s := newTestServer(t, &fakeTTS{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["ready"])
	assert.Equal(t, tts.DefaultVoiceID, body["voice"])
}

func TestSynthesizeReturnsWAV(t *testing.T) {
	engine := &fakeTTS{}
	s := newTestServer(t, engine)

	payload := `{"text": "hello world", "voice": "af_heart", "speed": 1.5}`
	req := httptest.NewRequest(http.MethodPost, "/synthesize", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello world", engine.lastReq.Text)
	assert.Equal(t, "af_heart", engine.lastReq.Voice)
	assert.InDelta(t, 1.5, engine.lastReq.Speed, 1e-6)

	samples, rate, err := audio.DecodeWAV(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, rate)
	assert.Equal(t, audio.SampleRate/4, len(samples))
}

func TestSynthesizeRejectsBadBody(t *testing.T) {
	s := newTestServer(t, &fakeTTS{})

	req := httptest.NewRequest(http.MethodPost, "/synthesize", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	s := newTestServer(t, &fakeTTS{})

	req := httptest.NewRequest(http.MethodPost, "/synthesize", strings.NewReader(`{"text": ""}`))
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSynthesizeReportsEngineFailure(t *testing.T) {
	engine := &fakeTTS{err: errors.New("model missing")}
	s := newTestServer(t, engine)

	req := httptest.NewRequest(http.MethodPost, "/synthesize", strings.NewReader(`{"text": "hi"}`))
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model missing")
}

func TestShutdownEndpointStopsServer(t *testing.T) {
	s := newTestServer(t, &fakeTTS{})

	req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-s.shutdownCh:
	case <-time.After(time.Second):
		t.Fatal("shutdown was not requested")
	}

	// Repeat calls must not panic.
	s.Shutdown()
}

func TestIdleActivityTracking(t *testing.T) {
	s := newTestServer(t, &fakeTTS{})
	s.mu.Lock()
	s.lastActive = time.Now().Add(-time.Minute)
	s.mu.Unlock()
	assert.GreaterOrEqual(t, s.idleFor(), time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.http.Handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Less(t, s.idleFor(), time.Second)
}
