package audio

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.99, -0.99}

	var buf bytes.Buffer
	require.NoError(t, EncodeWAV(&buf, samples, SampleRate))

	decoded, rate, err := DecodeWAV(&buf)
	require.NoError(t, err)
	assert.Equal(t, SampleRate, rate)
	require.Len(t, decoded, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i], decoded[i], 1.0/32767, "sample %d", i)
	}
}

func TestWAVRoundTripFullScale(t *testing.T) {
	samples := []float32{1.0, -1.0, 0.99, -0.99}

	var buf bytes.Buffer
	require.NoError(t, EncodeWAV(&buf, samples, SampleRate))

	decoded, _, err := DecodeWAV(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i], decoded[i], 0.5/32767, "sample %d", i)
	}
}

func TestEncodeWAVClipsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeWAV(&buf, []float32{2.0, -2.0}, SampleRate))

	decoded, _, err := DecodeWAV(&buf)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, decoded[0], 1e-3)
	assert.InDelta(t, -1.0, decoded[1], 1e-3)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, _, err := DecodeWAV(bytes.NewReader([]byte("definitely not a wav file, nope")))
	require.Error(t, err)

	_, _, err = DecodeWAV(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestSaveAndLoadWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	samples := makeSamples(SampleRate / 10)

	require.NoError(t, SaveWAV(path, samples, SampleRate))

	loaded, rate, err := LoadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, SampleRate, rate)
	assert.Len(t, loaded, len(samples))
}

func TestPCMConversionRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.125}
	pcm := FloatsToPCM(samples)
	require.Len(t, pcm, len(samples)*2)

	back := PCMToFloats(pcm)
	require.Len(t, back, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i], back[i], 1.0/32767, "sample %d", i)
	}
}

func TestFloatToPCMBounds(t *testing.T) {
	assert.Equal(t, int16(32767), FloatToPCM(1.0))
	assert.Equal(t, int16(32767), FloatToPCM(5.0))
	assert.Equal(t, int16(-32767), FloatToPCM(-1.0))
	assert.Equal(t, int16(-32767), FloatToPCM(-5.0))
	assert.Equal(t, int16(0), FloatToPCM(0))
}
