package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/emmett/parley/internal/audio"
)

// PiperEngine implements the Engine interface by shelling out to the
// piper binary, which reads text on stdin and writes WAV on stdout.
type PiperEngine struct {
	config      Config
	mu          sync.Mutex
	initialized bool
}

// NewPiperEngine creates a new Piper TTS engine.
func NewPiperEngine() *PiperEngine {
	return &PiperEngine{}
}

// Initialize sets up the Piper engine.
func (p *PiperEngine) Initialize(config Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return fmt.Errorf("engine already initialized")
	}
	if config.BinaryPath == "" {
		config.BinaryPath = "piper"
	}
	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		return fmt.Errorf("piper binary not found: %w", err)
	}

	p.config = config
	p.initialized = true
	return nil
}

// Synthesize converts text to a clip of samples via the piper subprocess.
func (p *PiperEngine) Synthesize(ctx context.Context, req SynthesizeRequest) ([]float32, int, error) {
	p.mu.Lock()
	if !p.initialized {
		p.mu.Unlock()
		return nil, 0, fmt.Errorf("engine not initialized")
	}
	config := p.config
	p.mu.Unlock()

	if req.Text == "" {
		return nil, 0, fmt.Errorf("empty text")
	}

	voice := req.Voice
	if voice == "" {
		voice = config.DefaultVoice
	}

	args := []string{"--output-raw=false", "--output_file", "-"}
	if config.ModelPath != "" {
		args = append(args, "--model", config.ModelPath)
	}
	if voice != "" {
		args = append(args, "--speaker", voice)
	}
	if req.Speed > 0 && req.Speed != 1.0 {
		// piper's length_scale is the inverse of speed
		args = append(args, "--length_scale", fmt.Sprintf("%.3f", 1.0/req.Speed))
	}

	cmd := exec.CommandContext(ctx, config.BinaryPath, args...)
	cmd.Stdin = bytes.NewBufferString(req.Text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("piper failed: %w (%s)", err, stderr.String())
	}

	samples, sampleRate, err := audio.DecodeWAV(&stdout)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding piper output: %w", err)
	}
	return samples, sampleRate, nil
}

// ListVoices returns the demo voice catalog.
func (p *PiperEngine) ListVoices() []Voice {
	return AllVoices()
}

// Close releases resources.
func (p *PiperEngine) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = false
	return nil
}

// IsInitialized returns true if engine is ready.
func (p *PiperEngine) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}
