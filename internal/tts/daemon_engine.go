package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/emmett/parley/internal/audio"
)

// DaemonEngine implements the Engine interface by talking to a running
// ttsd instance over HTTP. Keeping the model resident in the daemon
// avoids the multi-second model load on every synthesis.
type DaemonEngine struct {
	baseURL     string
	client      *http.Client
	config      Config
	mu          sync.Mutex
	initialized bool
}

// SynthesizeBody is the JSON request body for the daemon's /synthesize
// endpoint.
type SynthesizeBody struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Lang  string  `json:"lang,omitempty"`
	Speed float32 `json:"speed,omitempty"`
}

// NewDaemonEngine creates a TTS engine backed by a daemon at baseURL
// (e.g. "http://127.0.0.1:7838").
func NewDaemonEngine(baseURL string) *DaemonEngine {
	return &DaemonEngine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Initialize verifies the daemon is reachable and healthy.
func (d *DaemonEngine) Initialize(config Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return fmt.Errorf("engine already initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts daemon unreachable at %s: %w", d.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts daemon unhealthy: %s", resp.Status)
	}

	d.config = config
	d.initialized = true
	return nil
}

// Synthesize sends the request to the daemon and decodes the WAV reply.
func (d *DaemonEngine) Synthesize(ctx context.Context, req SynthesizeRequest) ([]float32, int, error) {
	d.mu.Lock()
	if !d.initialized {
		d.mu.Unlock()
		return nil, 0, fmt.Errorf("engine not initialized")
	}
	config := d.config
	d.mu.Unlock()

	if req.Text == "" {
		return nil, 0, fmt.Errorf("empty text")
	}

	voice := req.Voice
	if voice == "" {
		voice = config.DefaultVoice
	}

	body, err := json.Marshal(SynthesizeBody{
		Text:  req.Text,
		Voice: voice,
		Lang:  req.Lang,
		Speed: req.Speed,
	})
	if err != nil {
		return nil, 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("synthesize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, 0, fmt.Errorf("tts daemon returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	samples, sampleRate, err := audio.DecodeWAV(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding daemon output: %w", err)
	}
	return samples, sampleRate, nil
}

// ListVoices returns the demo voice catalog.
func (d *DaemonEngine) ListVoices() []Voice {
	return AllVoices()
}

// Shutdown asks the daemon to exit.
func (d *DaemonEngine) Shutdown(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/shutdown", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Close releases resources.
func (d *DaemonEngine) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	return nil
}

// IsInitialized returns true if engine is ready.
func (d *DaemonEngine) IsInitialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}
