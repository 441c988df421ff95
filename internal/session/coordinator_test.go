package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/parley/internal/audio"
)

const resultWait = 2 * time.Second

func waitResult(t *testing.T, c *Coordinator) Result {
	t.Helper()
	select {
	case res := <-c.Results():
		return res
	case <-time.After(resultWait):
		t.Fatal("timed out waiting for a transcription result")
		return Result{}
	}
}

func TestSubmitClipShortRangeSkipsEngine(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	buf.Append(make([]float32, audio.SampleRate/4)) // 0.25s, below the guard
	engine := &fakeEngine{}
	c := NewCoordinator(buf, engine)

	handle := c.SubmitClip(0, buf.Len())

	res := waitResult(t, c)
	assert.Equal(t, handle, res.Handle)
	assert.Equal(t, KindClip, res.Kind)
	assert.Empty(t, res.Segments)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, engine.callCount())
}

func TestSubmitClipOffsetsSegmentTimes(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	buf.Append(make([]float32, 2*audio.SampleRate))
	engine := &fakeEngine{segments: []audio.Segment{{Text: "hi", Start: 0, End: 0.5}}}
	c := NewCoordinator(buf, engine)

	// Transcribe the second half; engine times are clip-relative
	c.SubmitClip(audio.SampleRate, 2*audio.SampleRate)

	res := waitResult(t, c)
	require.NoError(t, res.Err)
	require.Len(t, res.Segments, 1)
	assert.InDelta(t, 1.0, res.Segments[0].Start, 1e-9)
	assert.InDelta(t, 1.5, res.Segments[0].End, 1e-9)

	require.True(t, c.Apply(res))
	segments := buf.Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "hi", segments[0].Text)
}

func TestSubmitClipSupersedesPending(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	buf.Append(make([]float32, 2*audio.SampleRate))
	gate := make(chan struct{})
	engine := &fakeEngine{
		segments: []audio.Segment{{Text: "x", Start: 0, End: 1}},
		gate:     gate,
	}
	c := NewCoordinator(buf, engine)

	first := c.SubmitClip(0, buf.Len())
	second := c.SubmitClip(0, buf.Len())
	close(gate)

	applied := 0
	for i := 0; i < 2; i++ {
		res := waitResult(t, c)
		if c.Apply(res) {
			applied++
			assert.Equal(t, second, res.Handle)
		} else {
			// The canceled request either errors or loses the handle check
			assert.NotEqual(t, second, res.Handle)
			assert.Equal(t, first, res.Handle)
		}
	}
	assert.Equal(t, 1, applied)
}

func TestApplyDiscardsStaleGeneration(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	buf.Append(make([]float32, audio.SampleRate))
	gate := make(chan struct{})
	engine := &fakeEngine{
		segments: []audio.Segment{{Text: "stale", Start: 0, End: 1}},
		gate:     gate,
	}
	c := NewCoordinator(buf, engine)

	c.SubmitClip(0, buf.Len())
	buf.Clear()
	close(gate)

	res := waitResult(t, c)
	assert.False(t, c.Apply(res))
	assert.Empty(t, buf.Segments())
}

func TestSubmitLiveSkipsWhenBusy(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	gate := make(chan struct{})
	engine := &fakeEngine{
		segments: []audio.Segment{{Text: "preview", Start: 0, End: 1}},
		gate:     gate,
	}
	c := NewCoordinator(buf, engine)

	window := make([]float32, audio.SampleRate)
	handle, ok := c.SubmitLive(window, audio.SampleRate)
	require.True(t, ok)

	_, ok = c.SubmitLive(window, audio.SampleRate)
	assert.False(t, ok)

	close(gate)
	res := waitResult(t, c)
	assert.Equal(t, handle, res.Handle)
	assert.Equal(t, KindLive, res.Kind)
	assert.Equal(t, "preview", res.Text)
	assert.True(t, c.LiveCurrent(res))

	// Free again after completion
	_, ok = c.SubmitLive(window, audio.SampleRate)
	assert.True(t, ok)
}

func TestSubmitLiveSwallowsEngineErrors(t *testing.T) {
	buf := audio.NewBuffer(audio.SampleRate)
	engine := &fakeEngine{err: assert.AnError}
	c := NewCoordinator(buf, engine)

	_, ok := c.SubmitLive(make([]float32, audio.SampleRate), audio.SampleRate)
	require.True(t, ok)

	res := waitResult(t, c)
	assert.Equal(t, KindLive, res.Kind)
	assert.Empty(t, res.Text)
	assert.NoError(t, res.Err)
}
