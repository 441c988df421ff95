// Package tts wraps text-to-speech engines and the demo voice catalog.
package tts

import "context"

// Engine defines the interface for text-to-speech engines.
type Engine interface {
	// Initialize sets up the TTS engine with the given config.
	Initialize(config Config) error

	// Synthesize converts text to a clip of mono float32 samples.
	Synthesize(ctx context.Context, req SynthesizeRequest) (samples []float32, sampleRate int, err error)

	// ListVoices returns available voices.
	ListVoices() []Voice

	// Close releases resources.
	Close() error

	// IsInitialized returns true if engine is ready.
	IsInitialized() bool
}

// Config holds TTS engine configuration.
type Config struct {
	// ModelPath is the engine's model file or directory.
	ModelPath string

	// BinaryPath is the synthesizer binary for subprocess engines.
	BinaryPath string

	// DefaultVoice is used when a request leaves Voice empty.
	DefaultVoice string
}

// SynthesizeRequest contains text-to-speech parameters.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Lang  string  // optional; derived from the voice when empty
	Speed float32 // 1.0 = normal, 0.5 = half speed, 2.0 = double
}

// DefaultConfig returns default TTS configuration.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:    modelPath,
		BinaryPath:   "piper",
		DefaultVoice: DefaultVoiceID,
	}
}
