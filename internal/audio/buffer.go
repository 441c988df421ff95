package audio

import (
	"strings"
	"sync"
)

// Segment is a timestamped span of transcribed text. Times are seconds
// relative to the start of the buffer's current timeline.
type Segment struct {
	Text  string
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Buffer holds recorded audio and its editing state: selection markers,
// transcript segments, and the currently selected segment.
//
// Selection markers are sample offsets; an end marker of 0 means "end of
// buffer". All methods are safe for concurrent use: the capture path appends
// while the control loop reads and edits.
type Buffer struct {
	mu         sync.Mutex
	samples    []float32
	sampleRate int

	selStart int
	selEnd   int // 0 means end of buffer

	segments        []Segment
	selectedSegment int

	// generation increments on destructive edits (Clear, DeleteSelection)
	// so results computed against an older buffer state can be recognized
	// as stale and discarded.
	generation uint64
}

// NewBuffer creates an empty buffer at the given sample rate.
func NewBuffer(sampleRate int) *Buffer {
	return &Buffer{
		sampleRate:      sampleRate,
		selectedSegment: -1,
	}
}

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Len returns the number of samples in the buffer.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// Generation returns the current mutation generation. It changes on every
// destructive edit, invalidating in-flight work against the old contents.
func (b *Buffer) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Append concatenates samples to the end of the buffer. It never fails and
// does not touch segments or the selection.
func (b *Buffer) Append(data []float32) {
	b.mu.Lock()
	b.samples = append(b.samples, data...)
	b.mu.Unlock()
}

// Samples returns a copy of the buffer contents.
func (b *Buffer) Samples() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Range returns a copy of samples in [start, end). Out-of-bounds indices are
// clamped; an inverted range yields an empty slice.
func (b *Buffer) Range(start, end int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end = clampRange(start, end, len(b.samples))
	out := make([]float32, end-start)
	copy(out, b.samples[start:end])
	return out
}

// Tail returns a copy of the most recent n samples (fewer if the buffer is
// shorter).
func (b *Buffer) Tail(n int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.samples) {
		n = len(b.samples)
	}
	out := make([]float32, n)
	copy(out, b.samples[len(b.samples)-n:])
	return out
}

// Selection returns the raw selection markers.
func (b *Buffer) Selection() (start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selStart, b.selEnd
}

// HasSelection reports whether a selection is active (either marker nonzero).
func (b *Buffer) HasSelection() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selStart > 0 || b.selEnd > 0
}

// SetSelectionStart sets the selection start marker, clamped to the buffer.
func (b *Buffer) SetSelectionStart(pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.samples) {
		pos = len(b.samples)
	}
	b.selStart = pos
}

// SetSelectionEnd sets the selection end marker, clamped to the buffer.
// Setting 0 restores the "end of buffer" sentinel.
func (b *Buffer) SetSelectionEnd(pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.samples) {
		pos = len(b.samples)
	}
	b.selEnd = pos
}

// EffectiveSelectionEnd resolves the end marker: a stored value of 0 means
// the end of the buffer, whatever its current length (including zero).
func (b *Buffer) EffectiveSelectionEnd() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.effectiveEndLocked()
}

func (b *Buffer) effectiveEndLocked() int {
	if b.selEnd > 0 {
		return b.selEnd
	}
	return len(b.samples)
}

// SelectedSamples returns a copy of samples within the selection markers.
// Empty when the start marker is at or past the effective end.
func (b *Buffer) SelectedSamples() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	end := b.effectiveEndLocked()
	if b.selStart >= end {
		return nil
	}
	out := make([]float32, end-b.selStart)
	copy(out, b.samples[b.selStart:end])
	return out
}

// SelectedDuration returns the selection length in seconds.
func (b *Buffer) SelectedDuration() float64 {
	return float64(len(b.SelectedSamples())) / float64(b.sampleRate)
}

// DeleteSelection removes the selected sample range and reconciles the
// transcript: segments ending at or before the cut keep their times, segments
// starting at or after it shift left by the deleted duration, and segments
// overlapping the cut are dropped outright (sub-segment word timing is not
// tracked, so there is nothing to trim to). Selection markers reset to the
// no-selection sentinel afterwards. The edit is destructive; there is no undo.
func (b *Buffer) DeleteSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) == 0 {
		return
	}

	end := b.effectiveEndLocked()
	start := b.selStart
	if start > end {
		start = end
	}

	deletedStart := float64(start) / float64(b.sampleRate)
	deletedEnd := float64(end) / float64(b.sampleRate)
	deletedDuration := deletedEnd - deletedStart

	b.samples = append(b.samples[:start], b.samples[end:]...)

	kept := b.segments[:0]
	for _, seg := range b.segments {
		switch {
		case seg.End <= deletedStart:
			kept = append(kept, seg)
		case seg.Start >= deletedEnd:
			kept = append(kept, Segment{
				Text:  seg.Text,
				Start: seg.Start - deletedDuration,
				End:   seg.End - deletedDuration,
			})
		}
	}
	b.segments = kept

	b.selStart = 0
	b.selEnd = 0
	b.selectedSegment = -1
	b.generation++
}

// ResetSelection clears the selection markers and the segment cursor without
// touching samples or segments.
func (b *Buffer) ResetSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selStart = 0
	b.selEnd = 0
	b.selectedSegment = -1
}

// Clear resets the buffer to its initial empty state and bumps the
// generation so stale background results are discarded.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
	b.selStart = 0
	b.selEnd = 0
	b.segments = nil
	b.selectedSegment = -1
	b.generation++
}

// Segments returns a copy of the transcript segments.
func (b *Buffer) Segments() []Segment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Segment, len(b.segments))
	copy(out, b.segments)
	return out
}

// ReplaceSegments replaces the transcript wholesale, as after a full or
// selection transcription.
func (b *Buffer) ReplaceSegments(segments []Segment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.segments = segments
	b.selectedSegment = -1
}

// SelectSegment marks the segment at index as selected and moves the
// selection markers to its time range. Out-of-range indices are ignored.
func (b *Buffer) SelectSegment(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.segments) {
		return
	}
	seg := b.segments[index]
	b.selectedSegment = index
	b.selStart = int(seg.Start * float64(b.sampleRate))
	b.selEnd = int(seg.End * float64(b.sampleRate))
}

// SelectedSegment returns the selected segment index, or -1.
func (b *Buffer) SelectedSegment() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedSegment
}

// Transcript joins all segment texts with spaces.
func (b *Buffer) Transcript() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	texts := make([]string, len(b.segments))
	for i, seg := range b.segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " ")
}

// TimeToSample converts seconds to a sample offset, flooring so that a
// boundary time maps to the first sample at or after it. Segment boundaries
// are compared with <=/>= during deletion, so flooring here keeps a segment
// ending exactly at a cut classified as adjacent, not overlapping.
func (b *Buffer) TimeToSample(seconds float64) int {
	return int(seconds * float64(b.sampleRate))
}

// SampleToTime converts a sample offset to seconds (exact division).
func (b *Buffer) SampleToTime(sample int) float64 {
	return float64(sample) / float64(b.sampleRate)
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}
