// Package stt wraps speech-to-text engines behind a clip-transcription
// interface: audio samples in, timed transcript segments out.
package stt

import (
	"context"

	"github.com/emmett/parley/internal/audio"
)

// Config holds configuration for an STT engine.
type Config struct {
	// ModelPath is the path to the STT model directory.
	ModelPath string

	// SampleRate is the audio sample rate in Hz.
	SampleRate int
}

// DefaultConfig returns a default STT configuration.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:  modelPath,
		SampleRate: audio.SampleRate,
	}
}

// Engine is the interface for speech-to-text engines. Transcribe treats the
// model as opaque: it takes a complete clip and returns segments with times
// in seconds relative to the start of the clip.
type Engine interface {
	// Initialize loads the model. Must be called once before Transcribe.
	Initialize(config Config) error

	// Transcribe converts a clip of mono float32 samples into timed
	// transcript segments. May take seconds for long clips.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]audio.Segment, error)

	// Close releases model resources.
	Close() error

	// IsInitialized returns true if the engine is ready.
	IsInitialized() bool
}

// TranscribeText transcribes a clip and joins the segment texts with spaces.
func TranscribeText(ctx context.Context, e Engine, samples []float32, sampleRate int) (string, error) {
	segments, err := e.Transcribe(ctx, samples, sampleRate)
	if err != nil {
		return "", err
	}
	text := ""
	for i, seg := range segments {
		if i > 0 {
			text += " "
		}
		text += seg.Text
	}
	return text, nil
}
