package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/stt"
)

// Mode is the session's exclusive activity. Transcription is an overlay
// flag, not a mode: it runs concurrently with Idle and Playing but a new
// recording cannot start while one is pending.
type Mode int

const (
	ModeIdle Mode = iota
	ModeRecording
	ModePlaying
)

func (m Mode) String() string {
	switch m {
	case ModeRecording:
		return "Recording"
	case ModePlaying:
		return "Playing"
	default:
		return "Idle"
	}
}

const (
	// TickInterval is the control loop cadence. Waveform refresh and the
	// playback cursor advance at this rate.
	TickInterval = 100 * time.Millisecond

	// LiveInterval is the default live-transcription cadence while
	// recording. Each cycle previews the trailing 2x interval window.
	LiveInterval = 3 * time.Second

	// minLiveSeconds of audio must exist before live preview starts.
	minLiveSeconds = 1.0
)

// samplesPerTick is how far the playback cursor advances each tick.
const samplesPerTick = audio.SampleRate / 10

// Config holds session construction parameters.
type Config struct {
	OutputDir string
	Capturer  audio.Capturer
	Player    audio.Player
	Engine    stt.Engine

	// LiveInterval overrides the live-transcription cadence.
	// Zero means the LiveInterval default.
	LiveInterval time.Duration
}

// Session is the top-level controller for a capture/edit/transcribe
// session. It owns one Buffer and enforces record/play/transcribe mutual
// exclusion. Drive it from a single control loop: call Tick every
// TickInterval and command methods in between. Methods are not safe for
// concurrent use from multiple goroutines.
type Session struct {
	buffer   *audio.Buffer
	coord    *Coordinator
	capturer audio.Capturer
	player   audio.Player

	outputDir    string
	liveInterval time.Duration

	mode         Mode
	transcribing bool
	liveText     string
	status       string

	playPos int // sample cursor, 0 = none
	playEnd int

	lastLive      time.Time
	captureCancel context.CancelFunc
}

// New creates an idle session with an empty buffer.
func New(cfg Config) *Session {
	interval := cfg.LiveInterval
	if interval <= 0 {
		interval = LiveInterval
	}
	buffer := audio.NewBuffer(audio.SampleRate)
	return &Session{
		buffer:       buffer,
		coord:        NewCoordinator(buffer, cfg.Engine),
		capturer:     cfg.Capturer,
		player:       cfg.Player,
		outputDir:    cfg.OutputDir,
		liveInterval: interval,
	}
}

// Buffer returns the session's audio buffer.
func (s *Session) Buffer() *audio.Buffer { return s.buffer }

// Mode returns the current exclusive activity.
func (s *Session) Mode() Mode { return s.mode }

// Transcribing reports whether a clip transcription is pending.
func (s *Session) Transcribing() bool { return s.transcribing }

// LiveText returns the most recent live-transcription preview.
func (s *Session) LiveText() string { return s.liveText }

// Status returns the last user-visible status message.
func (s *Session) Status() string { return s.status }

// PlayPos returns the playback cursor sample offset, 0 when not playing.
func (s *Session) PlayPos() int { return s.playPos }

// StartRecording begins a fresh capture. Playback is stopped, the buffer
// cleared, and the live-transcription cadence started. Refused while a
// clip transcription is pending.
func (s *Session) StartRecording() error {
	if s.mode == ModeRecording {
		return nil
	}
	if s.transcribing {
		s.status = "Transcription in progress, wait for it to finish"
		return nil
	}
	s.stopPlayback()

	s.buffer.Clear()
	s.liveText = ""

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.capturer.Start(ctx); err != nil {
		cancel()
		s.status = fmt.Sprintf("Capture failed to start: %v", err)
		return err
	}
	s.captureCancel = cancel
	s.mode = ModeRecording
	s.lastLive = time.Now()
	s.status = "Recording..."
	return nil
}

// StopRecording stops capture and the live cadence. An in-flight live
// preview is allowed to finish; its result is discarded on arrival.
func (s *Session) StopRecording() {
	if s.mode != ModeRecording {
		return
	}
	s.drainCapture()
	s.capturer.Stop()
	if s.captureCancel != nil {
		s.captureCancel()
		s.captureCancel = nil
	}
	s.mode = ModeIdle
	s.status = fmt.Sprintf("Recorded %s", audio.FormatTime(s.buffer.Duration()))
}

// TogglePlayback starts playback of the selection (or the full buffer
// when no selection is active), or stops it if already playing.
func (s *Session) TogglePlayback() {
	if s.mode == ModePlaying {
		s.stopPlayback()
		s.status = "Playback stopped"
		return
	}
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	if s.buffer.Len() == 0 {
		s.status = "Nothing to play"
		return
	}

	start, _ := s.buffer.Selection()
	end := s.buffer.EffectiveSelectionEnd()
	var samples []float32
	if s.buffer.HasSelection() {
		samples = s.buffer.SelectedSamples()
	} else {
		start, end = 0, s.buffer.Len()
		samples = s.buffer.Samples()
	}
	if len(samples) == 0 {
		s.status = "Selection is empty"
		return
	}

	if err := s.player.Play(samples, s.buffer.SampleRate()); err != nil {
		s.status = fmt.Sprintf("Playback failed: %v", err)
		return
	}
	s.mode = ModePlaying
	s.playPos = start
	s.playEnd = end
	s.status = "Playing..."
}

// stopPlayback stops the player and clears the cursor immediately.
func (s *Session) stopPlayback() {
	if s.mode != ModePlaying {
		return
	}
	s.player.Stop()
	s.mode = ModeIdle
	s.playPos = 0
	s.playEnd = 0
}

// TranscribeAll submits the whole buffer for transcription, replacing
// the transcript when the result arrives.
func (s *Session) TranscribeAll() {
	s.transcribeRange(0, s.buffer.Len(), "buffer")
}

// TranscribeSelection submits the selected range for transcription.
// Falls back to the whole buffer when no selection is active.
func (s *Session) TranscribeSelection() {
	if !s.buffer.HasSelection() {
		s.TranscribeAll()
		return
	}
	start, _ := s.buffer.Selection()
	s.transcribeRange(start, s.buffer.EffectiveSelectionEnd(), "selection")
}

func (s *Session) transcribeRange(start, end int, what string) {
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	s.stopPlayback()
	if s.buffer.Len() == 0 {
		s.status = "Nothing to transcribe"
		return
	}
	if float64(end-start)/float64(s.buffer.SampleRate()) < MinClipSeconds {
		s.status = fmt.Sprintf("Too short to transcribe (%s minimum)",
			audio.FormatTime(MinClipSeconds))
		return
	}
	s.coord.SubmitClip(start, end)
	s.transcribing = true
	s.status = fmt.Sprintf("Transcribing %s...", what)
}

// DeleteSelection removes the selected range. Requires an active
// selection; the bare sentinel would otherwise wipe the whole buffer.
func (s *Session) DeleteSelection() {
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	s.stopPlayback()
	if s.buffer.Len() == 0 {
		s.status = "Buffer is empty"
		return
	}
	if !s.buffer.HasSelection() {
		s.status = "No selection. Mark a range or pick a segment first"
		return
	}
	deleted := s.buffer.SelectedDuration()
	s.buffer.DeleteSelection()
	s.status = fmt.Sprintf("Deleted %s", audio.FormatTime(deleted))
}

// ResetSelection clears the selection markers.
func (s *Session) ResetSelection() {
	s.buffer.ResetSelection()
	s.status = "Selection cleared"
}

// ClearBuffer stops any activity and resets the buffer to empty.
func (s *Session) ClearBuffer() {
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	s.stopPlayback()
	s.buffer.Clear()
	s.liveText = ""
	s.status = "Buffer cleared"
}

// Save writes the selected range (or the full buffer) as a WAV file,
// plus a plain-text transcript when segments exist. Returns the WAV path.
func (s *Session) Save() (string, error) {
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	s.stopPlayback()
	if s.buffer.Len() == 0 {
		s.status = "Nothing to save"
		return "", nil
	}

	var samples []float32
	if s.buffer.HasSelection() {
		samples = s.buffer.SelectedSamples()
	} else {
		samples = s.buffer.Samples()
	}
	if len(samples) == 0 {
		s.status = "Selection is empty"
		return "", nil
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		s.status = fmt.Sprintf("Save failed: %v", err)
		return "", err
	}

	stamp := time.Now().Format("20060102_150405")
	wavPath := filepath.Join(s.outputDir, fmt.Sprintf("recording_%s.wav", stamp))
	if err := audio.SaveWAV(wavPath, samples, s.buffer.SampleRate()); err != nil {
		s.status = fmt.Sprintf("Save failed: %v", err)
		return "", err
	}

	if transcript := s.buffer.Transcript(); transcript != "" {
		txtPath := filepath.Join(s.outputDir, fmt.Sprintf("recording_%s.txt", stamp))
		if err := os.WriteFile(txtPath, []byte(transcript+"\n"), 0o644); err != nil {
			s.status = fmt.Sprintf("Transcript save failed: %v", err)
			return wavPath, err
		}
	}

	s.status = fmt.Sprintf("Saved %s", filepath.Base(wavPath))
	return wavPath, nil
}

// Close releases the session's devices.
func (s *Session) Close() {
	if s.mode == ModeRecording {
		s.StopRecording()
	}
	s.stopPlayback()
	s.coord.CancelClip()
}

// Tick drives the session: drains captured audio into the buffer,
// advances the playback cursor, runs the live-transcription cadence,
// and applies completed transcription results. Call every TickInterval.
func (s *Session) Tick(now time.Time) {
	if s.mode == ModeRecording {
		s.drainCapture()
		s.maybeSubmitLive(now)
	}
	if s.mode == ModePlaying {
		s.advancePlayback()
	}
	s.drainResults()
}

// drainCapture moves all pending capture blocks into the buffer.
func (s *Session) drainCapture() {
	for {
		select {
		case block, ok := <-s.capturer.Blocks():
			if !ok {
				return
			}
			s.buffer.Append(block)
		case err, ok := <-s.capturer.Errors():
			if !ok {
				return
			}
			if err != nil {
				s.failRecording(err)
				return
			}
		default:
			return
		}
	}
}

func (s *Session) failRecording(err error) {
	s.capturer.Stop()
	if s.captureCancel != nil {
		s.captureCancel()
		s.captureCancel = nil
	}
	s.mode = ModeIdle
	s.status = fmt.Sprintf("Recording failed: %v", err)
}

// maybeSubmitLive submits a live preview over the trailing window when
// the cadence is due and enough audio exists.
func (s *Session) maybeSubmitLive(now time.Time) {
	if now.Sub(s.lastLive) < s.liveInterval {
		return
	}
	if s.buffer.Duration() < minLiveSeconds {
		return
	}
	window := int(2 * s.liveInterval.Seconds() * float64(s.buffer.SampleRate()))
	if _, ok := s.coord.SubmitLive(s.buffer.Tail(window), s.buffer.SampleRate()); ok {
		s.lastLive = now
	}
}

// advancePlayback moves the cursor one tick's worth of samples, ending
// playback when it reaches the end of the played range or the player
// reports completion.
func (s *Session) advancePlayback() {
	select {
	case <-s.player.Done():
		s.stopPlayback()
		s.status = "Playback finished"
		return
	default:
	}
	s.playPos += samplesPerTick
	if s.playPos >= s.playEnd {
		s.stopPlayback()
		s.status = "Playback finished"
	}
}

// drainResults applies completed transcription results, discarding
// anything stale.
func (s *Session) drainResults() {
	for {
		select {
		case res := <-s.coord.Results():
			s.handleResult(res)
		default:
			return
		}
	}
}

func (s *Session) handleResult(res Result) {
	switch res.Kind {
	case KindClip:
		// A superseded clip's result, cancellation error included, says
		// nothing about the request still in flight.
		if !s.coord.ClipCurrent(res) {
			return
		}
		s.transcribing = false
		if res.Err != nil {
			s.status = fmt.Sprintf("Transcription failed: %v", res.Err)
			return
		}
		if !s.coord.Apply(res) {
			return
		}
		n := len(res.Segments)
		if n == 0 {
			s.status = "No speech detected"
		} else {
			s.status = fmt.Sprintf("Transcribed %d segment(s)", n)
		}
	case KindLive:
		// A preview arriving after recording stopped or the buffer was
		// cleared is stale.
		if s.mode != ModeRecording || !s.coord.LiveCurrent(res) {
			return
		}
		if res.Generation != s.buffer.Generation() {
			return
		}
		s.liveText = res.Text
	}
}
