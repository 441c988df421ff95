package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secsToSamples(seconds float64) int {
	return int(seconds * SampleRate)
}

func makeSamples(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i%100) / 100
	}
	return out
}

func TestAppendConcatenates(t *testing.T) {
	b := NewBuffer(SampleRate)

	a := []float32{0.1, 0.2, 0.3}
	c := []float32{0.4, 0.5}
	b.Append(a)
	b.Append(c)

	require.Equal(t, 5, b.Len())
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4, 0.5}, b.Samples())
	assert.InDelta(t, 5.0/SampleRate, b.Duration(), 1e-12)
}

func TestEffectiveSelectionEndSentinel(t *testing.T) {
	b := NewBuffer(SampleRate)

	// Empty buffer: sentinel resolves to 0
	assert.Equal(t, 0, b.EffectiveSelectionEnd())

	b.Append(makeSamples(1000))
	assert.Equal(t, 1000, b.EffectiveSelectionEnd())

	// Appending grows the effective end while the sentinel holds
	b.Append(makeSamples(500))
	assert.Equal(t, 1500, b.EffectiveSelectionEnd())

	b.SetSelectionEnd(700)
	assert.Equal(t, 700, b.EffectiveSelectionEnd())

	// Resetting to 0 restores the sentinel
	b.SetSelectionEnd(0)
	assert.Equal(t, 1500, b.EffectiveSelectionEnd())
}

func TestSelectionClamping(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(100))

	b.SetSelectionStart(-5)
	b.SetSelectionEnd(1000)
	start, end := b.Selection()
	assert.Equal(t, 0, start)
	assert.Equal(t, 100, end)
}

func TestSelectedSamples(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append([]float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	b.SetSelectionStart(3)
	b.SetSelectionEnd(7)
	assert.Equal(t, []float32{3, 4, 5, 6}, b.SelectedSamples())

	// Start at or past the effective end yields nothing
	b.SetSelectionStart(7)
	assert.Empty(t, b.SelectedSamples())
}

func TestDeleteSelectionRemovesRange(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(secsToSamples(3)))

	b.SetSelectionStart(secsToSamples(1))
	b.SetSelectionEnd(secsToSamples(2))
	before := b.Len()
	b.DeleteSelection()

	assert.Equal(t, before-secsToSamples(1), b.Len())

	// Markers reset to the no-selection sentinel
	start, end := b.Selection()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
	assert.False(t, b.HasSelection())
}

func TestDeleteSelectionShiftsSegments(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(secsToSamples(7)))
	b.ReplaceSegments([]Segment{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 2, End: 3},
		{Text: "three", Start: 5, End: 6},
	})

	// Delete (1.5s, 4s): first segment untouched, second overlaps and is
	// dropped, third shifts left by 2.5s.
	b.SetSelectionStart(secsToSamples(1.5))
	b.SetSelectionEnd(secsToSamples(4))
	b.DeleteSelection()

	segments := b.Segments()
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Text: "one", Start: 0, End: 1}, segments[0])
	assert.Equal(t, "three", segments[1].Text)
	assert.InDelta(t, 2.5, segments[1].Start, 1e-9)
	assert.InDelta(t, 3.5, segments[1].End, 1e-9)
}

func TestDeleteSelectionBoundarySegmentsKept(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(secsToSamples(4)))
	b.ReplaceSegments([]Segment{
		{Text: "before", Start: 0, End: 1}, // ends exactly at the cut start
		{Text: "after", Start: 2, End: 3},  // starts exactly at the cut end
	})

	b.SetSelectionStart(secsToSamples(1))
	b.SetSelectionEnd(secsToSamples(2))
	b.DeleteSelection()

	segments := b.Segments()
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Text: "before", Start: 0, End: 1}, segments[0])
	assert.InDelta(t, 1.0, segments[1].Start, 1e-9)
	assert.InDelta(t, 2.0, segments[1].End, 1e-9)
}

func TestDeleteWithSentinelRemovesToEnd(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(1000))
	b.SetSelectionStart(600)

	b.DeleteSelection()
	assert.Equal(t, 600, b.Len())
}

func TestDeleteBumpsGeneration(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(1000))
	gen := b.Generation()

	b.SetSelectionStart(100)
	b.SetSelectionEnd(200)
	b.DeleteSelection()
	assert.NotEqual(t, gen, b.Generation())
}

func TestResetSelectionIdempotent(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(1000))
	b.SetSelectionStart(100)
	b.SetSelectionEnd(200)
	b.SelectSegment(0)

	b.ResetSelection()
	start1, end1 := b.Selection()
	sel1 := b.SelectedSegment()

	b.ResetSelection()
	start2, end2 := b.Selection()
	assert.Equal(t, start1, start2)
	assert.Equal(t, end1, end2)
	assert.Equal(t, sel1, b.SelectedSegment())
	assert.Equal(t, 0, start1)
	assert.Equal(t, 0, end1)
	assert.Equal(t, -1, sel1)
}

func TestClearResetsEverything(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(1000))
	b.ReplaceSegments([]Segment{{Text: "hi", Start: 0, End: 0.01}})
	b.SetSelectionStart(10)
	gen := b.Generation()

	b.Clear()

	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Segments())
	assert.False(t, b.HasSelection())
	assert.Equal(t, -1, b.SelectedSegment())
	assert.NotEqual(t, gen, b.Generation())
}

func TestSelectSegmentMovesMarkers(t *testing.T) {
	b := NewBuffer(SampleRate)
	b.Append(makeSamples(secsToSamples(3)))
	b.ReplaceSegments([]Segment{
		{Text: "a", Start: 0.5, End: 1.0},
		{Text: "b", Start: 1.5, End: 2.5},
	})

	b.SelectSegment(1)
	assert.Equal(t, 1, b.SelectedSegment())
	start, end := b.Selection()
	assert.Equal(t, secsToSamples(1.5), start)
	assert.Equal(t, secsToSamples(2.5), end)

	// Out of range is ignored
	b.SelectSegment(5)
	assert.Equal(t, 1, b.SelectedSegment())
}

func TestTranscript(t *testing.T) {
	b := NewBuffer(SampleRate)
	assert.Equal(t, "", b.Transcript())

	b.ReplaceSegments([]Segment{
		{Text: "hello", Start: 0, End: 1},
		{Text: "world", Start: 1, End: 2},
	})
	assert.Equal(t, "hello world", b.Transcript())
}

func TestTimeSampleConversions(t *testing.T) {
	b := NewBuffer(SampleRate)

	assert.Equal(t, 16000, b.TimeToSample(1.0))
	assert.Equal(t, 8000, b.TimeToSample(0.5))
	assert.InDelta(t, 1.0, b.SampleToTime(16000), 1e-12)

	// A segment boundary converted to samples and back stays put
	assert.InDelta(t, 2.5, b.SampleToTime(b.TimeToSample(2.5)), 1e-9)
}
