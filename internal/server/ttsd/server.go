// Package ttsd is the local HTTP synthesis daemon. It keeps a TTS
// engine resident so clients skip the per-request model load, and shuts
// itself down after a configurable idle period.
package ttsd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/tts"
)

type Config struct {
	Host        string
	Port        int
	IdleTimeout time.Duration // 0 disables the idle watchdog
	Engine      tts.Engine
	EngineConf  tts.Config
}

type Server struct {
	config Config
	engine tts.Engine
	http   *http.Server

	mu         sync.Mutex
	lastActive time.Time

	shutdownCh chan struct{}
	once       sync.Once
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("no TTS engine configured")
	}
	if err := cfg.Engine.Initialize(cfg.EngineConf); err != nil {
		return nil, fmt.Errorf("failed to initialize TTS engine: %w", err)
	}

	s := &Server{
		config:     cfg,
		engine:     cfg.Engine,
		lastActive: time.Now(),
		shutdownCh: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /synthesize", s.handleSynthesize)
	mux.HandleFunc("POST /shutdown", s.handleShutdown)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}
	return s, nil
}

// Run serves until Shutdown is requested, the idle watchdog fires, or
// the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if s.config.IdleTimeout > 0 {
		go s.watchIdle()
	}

	select {
	case err := <-errCh:
		s.engine.Close()
		return err
	case <-ctx.Done():
	case <-s.shutdownCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.engine.Close()
	return err
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Shutdown requests a graceful stop. Safe to call more than once.
func (s *Server) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}

func (s *Server) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Server) idleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive)
}

func (s *Server) watchIdle() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdownCh:
			return
		case <-ticker.C:
			if s.idleFor() >= s.config.IdleTimeout {
				s.Shutdown()
				return
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	idle := s.idleFor()
	s.touch()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"ready":        s.engine.IsInitialized(),
		"voice":        s.config.EngineConf.DefaultVoice,
		"idle_seconds": int(idle.Seconds()),
	})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	s.touch()
	defer s.touch()

	var body tts.SynthesizeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	samples, rate, err := s.engine.Synthesize(r.Context(), tts.SynthesizeRequest{
		Text:  body.Text,
		Voice: body.Voice,
		Lang:  body.Lang,
		Speed: body.Speed,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("synthesis failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	if err := audio.EncodeWAV(w, samples, rate); err != nil {
		// Headers are already out; nothing useful to report to the client.
		return
	}
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "shutting down")
	s.Shutdown()
}
