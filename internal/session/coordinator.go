// Package session implements the audio capture/edit/transcribe session:
// the buffer-owning state machine and the background transcription
// coordinator that feeds it.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/stt"
)

// MinClipSeconds is the shortest range submitted to the engine. Shorter
// ranges resolve immediately to an empty result without an engine call.
const MinClipSeconds = 0.5

// RequestKind distinguishes the two transcription request classes.
type RequestKind int

const (
	// KindClip is an explicit full or selection transcription whose
	// result replaces the buffer's segments.
	KindClip RequestKind = iota

	// KindLive is a periodic text-only preview over the trailing
	// window of an active recording.
	KindLive
)

// Result is a completed transcription delivered to the control loop.
type Result struct {
	Handle     uuid.UUID
	Kind       RequestKind
	Segments   []audio.Segment // clip requests only, times absolute in the buffer timeline
	Text       string          // live requests only
	Generation uint64          // buffer generation at submission
	Err        error
}

// Coordinator schedules background transcription against the STT engine.
// At most one clip request and one live request are outstanding at any
// time; a new clip request cancels and supersedes the pending one, while
// a new live request is skipped if one is still in flight. Completions
// are delivered on Results for the control loop to apply.
type Coordinator struct {
	engine  stt.Engine
	buffer  *audio.Buffer
	results chan Result

	mu         sync.Mutex
	clipHandle uuid.UUID
	clipCancel context.CancelFunc
	liveHandle uuid.UUID
	liveBusy   bool
}

// NewCoordinator creates a coordinator for the given buffer and engine.
func NewCoordinator(buffer *audio.Buffer, engine stt.Engine) *Coordinator {
	return &Coordinator{
		engine:  engine,
		buffer:  buffer,
		results: make(chan Result, 16),
	}
}

// Results is the completion channel the control loop polls each tick.
func (c *Coordinator) Results() <-chan Result {
	return c.results
}

// SubmitClip requests transcription of samples [startSample, endSample)
// from the buffer. A pending clip request is canceled and superseded.
// Ranges shorter than MinClipSeconds resolve immediately with no
// segments and no engine call.
func (c *Coordinator) SubmitClip(startSample, endSample int) uuid.UUID {
	handle := uuid.New()
	generation := c.buffer.Generation()

	c.mu.Lock()
	if c.clipCancel != nil {
		c.clipCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.clipHandle = handle
	c.clipCancel = cancel
	c.mu.Unlock()

	samples := c.buffer.Range(startSample, endSample)
	rate := c.buffer.SampleRate()
	offset := c.buffer.SampleToTime(startSample)

	if float64(len(samples))/float64(rate) < MinClipSeconds {
		cancel()
		c.deliver(Result{Handle: handle, Kind: KindClip, Generation: generation})
		return handle
	}

	go func() {
		defer cancel()
		segments, err := c.engine.Transcribe(ctx, samples, rate)
		if err == nil {
			for i := range segments {
				segments[i].Start += offset
				segments[i].End += offset
			}
		}
		c.deliver(Result{
			Handle:     handle,
			Kind:       KindClip,
			Segments:   segments,
			Generation: generation,
			Err:        err,
		})
	}()
	return handle
}

// SubmitLive requests a text-only preview of the given trailing window.
// If a live request is still in flight the cycle is skipped. Engine
// failures yield an empty preview rather than an error.
func (c *Coordinator) SubmitLive(samples []float32, sampleRate int) (uuid.UUID, bool) {
	c.mu.Lock()
	if c.liveBusy {
		c.mu.Unlock()
		return uuid.Nil, false
	}
	handle := uuid.New()
	c.liveHandle = handle
	c.liveBusy = true
	c.mu.Unlock()

	generation := c.buffer.Generation()

	go func() {
		text, err := stt.TranscribeText(context.Background(), c.engine, samples, sampleRate)
		if err != nil {
			text = ""
		}
		c.mu.Lock()
		c.liveBusy = false
		c.mu.Unlock()
		c.deliver(Result{
			Handle:     handle,
			Kind:       KindLive,
			Text:       text,
			Generation: generation,
		})
	}()
	return handle, true
}

// Apply merges a clip result into the buffer. Stale results, meaning a
// superseded handle or a buffer mutated since submission, are discarded.
// Returns true if the segments were applied.
func (c *Coordinator) Apply(res Result) bool {
	if res.Kind != KindClip || res.Err != nil {
		return false
	}
	c.mu.Lock()
	current := c.clipHandle == res.Handle
	c.mu.Unlock()
	if !current {
		return false
	}
	if res.Generation != c.buffer.Generation() {
		return false
	}
	c.buffer.ReplaceSegments(res.Segments)
	return true
}

// ClipCurrent reports whether a clip result belongs to the most recent
// clip request. A superseded request's result, including its cancellation
// error, must be discarded without touching session state.
func (c *Coordinator) ClipCurrent(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return res.Kind == KindClip && res.Handle == c.clipHandle
}

// LiveCurrent reports whether a live result is still the most recent
// one, for discarding out-of-order previews.
func (c *Coordinator) LiveCurrent(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return res.Kind == KindLive && res.Handle == c.liveHandle
}

// CancelClip cancels any pending clip request. Its eventual result, if
// one arrives, will no longer match the current handle and is discarded.
func (c *Coordinator) CancelClip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clipCancel != nil {
		c.clipCancel()
		c.clipCancel = nil
	}
	c.clipHandle = uuid.Nil
}

// deliver pushes a result without ever blocking a worker goroutine.
// If the control loop has fallen 16 results behind, the oldest pending
// result is dropped to make room.
func (c *Coordinator) deliver(res Result) {
	for {
		select {
		case c.results <- res:
			return
		default:
			select {
			case <-c.results:
			default:
			}
		}
	}
}
