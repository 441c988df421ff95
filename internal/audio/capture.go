package audio

import "context"

// CaptureConfig holds configuration for audio capture.
type CaptureConfig struct {
	// SampleRate is the number of samples per second (Hz).
	SampleRate uint32

	// Channels is the number of audio channels. 1 = mono.
	Channels uint32

	// BufferFrames is the number of frames per capture block.
	// Smaller = lower latency, higher CPU usage.
	BufferFrames uint32

	// BlockBufferSize is the size of the channel buffer for captured blocks.
	// Larger = more tolerance for a slow consumer, higher memory usage.
	BlockBufferSize int

	// DeviceID is the audio device identifier. Empty = default device.
	DeviceID string
}

// DefaultCaptureConfig returns the capture configuration used by the
// recording session: 16kHz mono float blocks of 100ms, matching the display
// refresh cadence.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:      SampleRate,
		Channels:        Channels,
		BufferFrames:    1600, // 100ms at 16kHz
		BlockBufferSize: 50,   // ~5 seconds of slack
	}
}

// Capturer is the interface for audio capture implementations. Captured
// blocks are delivered on a channel; the device callback never blocks on a
// slow consumer (blocks are dropped and reported on Errors instead).
type Capturer interface {
	// Start begins audio capture.
	Start(ctx context.Context) error

	// Stop stops audio capture and closes the block channel.
	Stop() error

	// Blocks returns the channel of captured sample blocks.
	Blocks() <-chan []float32

	// Errors returns a channel that receives capture errors.
	Errors() <-chan error

	// IsRunning returns true if capture is currently active.
	IsRunning() bool
}

// NewCapturer creates an audio capturer with the given configuration.
func NewCapturer(config CaptureConfig) (Capturer, error) {
	return NewMalgoCapturer(config)
}
