package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/parley/internal/audio"
)

type testRig struct {
	sess     *Session
	capturer *fakeCapturer
	player   *fakePlayer
	engine   *fakeEngine
}

func newTestRig(t *testing.T) *testRig {
	capturer := newFakeCapturer()
	player := newFakePlayer()
	engine := &fakeEngine{}
	sess := New(Config{
		OutputDir: t.TempDir(),
		Capturer:  capturer,
		Player:    player,
		Engine:    engine,
	})
	return &testRig{sess: sess, capturer: capturer, player: player, engine: engine}
}

// feed pushes seconds of audio into the capture channel in 100ms blocks.
func (r *testRig) feed(seconds float64) {
	blockSize := audio.SampleRate / 10
	total := int(seconds * audio.SampleRate)
	for total > 0 {
		n := blockSize
		if n > total {
			n = total
		}
		block := make([]float32, n)
		for i := range block {
			block[i] = 0.1
		}
		r.capturer.blocks <- block
		total -= n
	}
}

// tickUntil ticks the session until cond holds or the deadline passes.
func (r *testRig) tickUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	now := time.Now()
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		now = now.Add(TickInterval)
		r.sess.Tick(now)
		time.Sleep(time.Millisecond)
	}
}

func TestRecordingAppendsCapturedAudio(t *testing.T) {
	r := newTestRig(t)

	require.NoError(t, r.sess.StartRecording())
	assert.Equal(t, ModeRecording, r.sess.Mode())
	assert.True(t, r.capturer.IsRunning())

	r.feed(0.5)
	r.sess.Tick(time.Now())
	assert.Equal(t, audio.SampleRate/2, r.sess.Buffer().Len())

	r.sess.StopRecording()
	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.False(t, r.capturer.IsRunning())
}

func TestStartRecordingClearsBuffer(t *testing.T) {
	r := newTestRig(t)

	require.NoError(t, r.sess.StartRecording())
	r.feed(0.5)
	r.sess.Tick(time.Now())
	r.sess.StopRecording()
	require.NotZero(t, r.sess.Buffer().Len())

	require.NoError(t, r.sess.StartRecording())
	assert.Zero(t, r.sess.Buffer().Len())
	r.sess.StopRecording()
}

func TestPlaybackEmptyBufferIsNoop(t *testing.T) {
	r := newTestRig(t)

	r.sess.TogglePlayback()
	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.Equal(t, "Nothing to play", r.sess.Status())
}

func TestPlaybackAdvancesCursorToEnd(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, 2*samplesPerTick))

	r.sess.TogglePlayback()
	require.Equal(t, ModePlaying, r.sess.Mode())
	assert.Len(t, r.player.played, 2*samplesPerTick)

	now := time.Now()
	r.sess.Tick(now)
	assert.Equal(t, ModePlaying, r.sess.Mode())
	assert.Equal(t, samplesPerTick, r.sess.PlayPos())

	r.sess.Tick(now.Add(TickInterval))
	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.Zero(t, r.sess.PlayPos())
}

func TestPlaybackOfSelection(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))
	r.sess.Buffer().SetSelectionStart(1000)
	r.sess.Buffer().SetSelectionEnd(5000)

	r.sess.TogglePlayback()
	require.Equal(t, ModePlaying, r.sess.Mode())
	assert.Len(t, r.player.played, 4000)
	assert.Equal(t, 1000, r.sess.PlayPos())
}

func TestPlaybackStopsOnToggle(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))

	r.sess.TogglePlayback()
	require.Equal(t, ModePlaying, r.sess.Mode())
	r.sess.TogglePlayback()
	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.False(t, r.player.IsPlaying())
}

func TestPlaybackEndsWhenPlayerFinishes(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))

	r.sess.TogglePlayback()
	r.player.finish()
	r.sess.Tick(time.Now())
	assert.Equal(t, ModeIdle, r.sess.Mode())
}

func TestTranscribeEmptyBufferIsNoop(t *testing.T) {
	r := newTestRig(t)
	r.sess.TranscribeAll()
	assert.False(t, r.sess.Transcribing())
	assert.Equal(t, "Nothing to transcribe", r.sess.Status())
	assert.Equal(t, 0, r.engine.callCount())
}

func TestDeleteWithoutSelectionIsGuarded(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, 1000))

	r.sess.DeleteSelection()
	assert.Equal(t, 1000, r.sess.Buffer().Len())
	assert.Contains(t, r.sess.Status(), "No selection")
}

func TestDeleteSelectionStopsPlaybackFirst(t *testing.T) {
	r := newTestRig(t)
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))

	r.sess.TogglePlayback()
	require.Equal(t, ModePlaying, r.sess.Mode())

	r.sess.Buffer().SetSelectionStart(100)
	r.sess.Buffer().SetSelectionEnd(200)
	r.sess.DeleteSelection()

	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.Equal(t, audio.SampleRate-100, r.sess.Buffer().Len())
}

func TestLivePreviewWhileRecording(t *testing.T) {
	r := newTestRig(t)
	r.engine.segments = []audio.Segment{{Text: "hello there", Start: 0, End: 1}}

	require.NoError(t, r.sess.StartRecording())
	r.feed(2.0)
	start := time.Now()
	r.sess.Tick(start)
	require.Equal(t, 2*audio.SampleRate, r.sess.Buffer().Len())

	// Cadence is due after LiveInterval
	r.sess.Tick(start.Add(LiveInterval + time.Second))
	r.tickUntil(t, func() bool { return r.sess.LiveText() == "hello there" })
	r.sess.StopRecording()
}

func TestLiveResultAfterStopIsDiscarded(t *testing.T) {
	r := newTestRig(t)
	gate := make(chan struct{})
	r.engine.segments = []audio.Segment{{Text: "too late", Start: 0, End: 1}}
	r.engine.gate = gate

	require.NoError(t, r.sess.StartRecording())
	r.feed(2.0)
	start := time.Now()
	r.sess.Tick(start)
	r.sess.Tick(start.Add(LiveInterval + time.Second)) // submits the live job

	r.sess.StopRecording()
	close(gate)

	// Drain for a while; the preview must never appear
	for i := 0; i < 20; i++ {
		r.sess.Tick(start.Add(time.Duration(i) * TickInterval))
		time.Sleep(time.Millisecond)
	}
	assert.Empty(t, r.sess.LiveText())
}

func TestEndToEndRecordTranscribeSave(t *testing.T) {
	r := newTestRig(t)
	r.engine.segments = []audio.Segment{
		{Text: "hello", Start: 0, End: 1},
		{Text: "world", Start: 1, End: 2},
	}

	require.NoError(t, r.sess.StartRecording())
	r.feed(2.0)
	r.sess.Tick(time.Now())
	r.sess.StopRecording()
	require.Equal(t, 2*audio.SampleRate, r.sess.Buffer().Len())

	r.sess.TranscribeAll()
	assert.True(t, r.sess.Transcribing())
	r.tickUntil(t, func() bool { return !r.sess.Transcribing() })

	segments := r.sess.Buffer().Segments()
	require.Len(t, segments, 2)
	assert.InDelta(t, 0.0, segments[0].Start, 1e-9)
	assert.InDelta(t, 2.0, segments[1].End, 1e-9)

	wavPath, err := r.sess.Save()
	require.NoError(t, err)
	require.NotEmpty(t, wavPath)

	samples, rate, err := audio.LoadWAV(wavPath)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, rate)
	assert.Equal(t, 2*audio.SampleRate, len(samples))

	txtPath := wavPath[:len(wavPath)-len(filepath.Ext(wavPath))] + ".txt"
	transcript, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(transcript))
}

func TestSupersededTranscriptionIsDiscarded(t *testing.T) {
	r := newTestRig(t)
	gate := make(chan struct{})
	r.engine.gate = gate
	r.engine.segments = []audio.Segment{{Text: "kept", Start: 0, End: 1}}
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))

	r.sess.TranscribeAll()
	r.sess.TranscribeAll() // cancels the first request
	require.True(t, r.sess.Transcribing())

	// Drain the canceled request's result; it must not clear the pending
	// flag or surface a failure while the second request is in flight.
	now := time.Now()
	for i := 0; i < 20; i++ {
		r.sess.Tick(now.Add(time.Duration(i) * TickInterval))
		time.Sleep(time.Millisecond)
	}
	assert.True(t, r.sess.Transcribing())
	assert.Equal(t, "Transcribing buffer...", r.sess.Status())

	close(gate)
	r.tickUntil(t, func() bool { return !r.sess.Transcribing() })
	segments := r.sess.Buffer().Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "kept", segments[0].Text)
	assert.Equal(t, "Transcribed 1 segment(s)", r.sess.Status())
}

func TestCustomLiveIntervalCadence(t *testing.T) {
	capturer := newFakeCapturer()
	engine := &fakeEngine{segments: []audio.Segment{{Text: "quick", Start: 0, End: 1}}}
	sess := New(Config{
		OutputDir:    t.TempDir(),
		Capturer:     capturer,
		Player:       newFakePlayer(),
		Engine:       engine,
		LiveInterval: 500 * time.Millisecond,
	})
	r := &testRig{sess: sess, capturer: capturer, engine: engine}

	require.NoError(t, sess.StartRecording())
	r.feed(2.0)
	start := time.Now()
	sess.Tick(start)
	require.Equal(t, 0, engine.callCount())

	// Due well before the 3s default
	sess.Tick(start.Add(600 * time.Millisecond))
	r.tickUntil(t, func() bool { return sess.LiveText() == "quick" })
	sess.StopRecording()
}

func TestStartRecordingRefusedWhileTranscribing(t *testing.T) {
	r := newTestRig(t)
	gate := make(chan struct{})
	defer close(gate)
	r.engine.gate = gate
	r.sess.Buffer().Append(make([]float32, audio.SampleRate))

	r.sess.TranscribeAll()
	require.True(t, r.sess.Transcribing())

	r.sess.StartRecording()
	assert.Equal(t, ModeIdle, r.sess.Mode())
	// The pending transcription's buffer must survive
	assert.Equal(t, audio.SampleRate, r.sess.Buffer().Len())
}

func TestCaptureErrorReturnsToIdle(t *testing.T) {
	r := newTestRig(t)

	require.NoError(t, r.sess.StartRecording())
	r.capturer.errors <- assert.AnError
	r.sess.Tick(time.Now())

	assert.Equal(t, ModeIdle, r.sess.Mode())
	assert.Contains(t, r.sess.Status(), "Recording failed")
}
