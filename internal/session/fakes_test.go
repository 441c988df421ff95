package session

import (
	"context"
	"sync"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/stt"
)

// fakeEngine returns canned segments, optionally blocking on a gate
// channel so tests can control completion order.
type fakeEngine struct {
	mu       sync.Mutex
	segments []audio.Segment
	err      error
	gate     chan struct{} // nil means return immediately
	calls    int
}

func (f *fakeEngine) Initialize(stt.Config) error { return nil }
func (f *fakeEngine) Close() error                { return nil }
func (f *fakeEngine) IsInitialized() bool         { return true }

func (f *fakeEngine) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]audio.Segment, error) {
	f.mu.Lock()
	f.calls++
	segments, err, gate := f.segments, f.err, f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]audio.Segment, len(segments))
	copy(out, segments)
	return out, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCapturer hands out test-fed blocks.
type fakeCapturer struct {
	blocks   chan []float32
	errors   chan error
	startErr error
	running  bool
}

func newFakeCapturer() *fakeCapturer {
	return &fakeCapturer{
		blocks: make(chan []float32, 64),
		errors: make(chan error, 4),
	}
}

func (f *fakeCapturer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeCapturer) Stop() error {
	f.running = false
	return nil
}

func (f *fakeCapturer) Blocks() <-chan []float32 { return f.blocks }
func (f *fakeCapturer) Errors() <-chan error     { return f.errors }
func (f *fakeCapturer) IsRunning() bool          { return f.running }

// fakePlayer records what was played and lets tests finish playback.
type fakePlayer struct {
	mu      sync.Mutex
	played  []float32
	rate    int
	playing bool
	stopped int
	done    chan struct{}
}

func newFakePlayer() *fakePlayer {
	done := make(chan struct{})
	close(done)
	return &fakePlayer{done: done}
}

func (f *fakePlayer) Play(samples []float32, sampleRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = samples
	f.rate = sampleRate
	f.playing = true
	f.done = make(chan struct{})
	return nil
}

func (f *fakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	if f.playing {
		f.playing = false
		close(f.done)
	}
}

func (f *fakePlayer) finish() {
	f.Stop()
}

func (f *fakePlayer) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *fakePlayer) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}
