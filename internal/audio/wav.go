package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WAV encode/decode for the only format this project produces: 16-bit PCM.
// Float samples are clipped to [-1, 1] and scaled to int16 on write.

const (
	wavHeaderSize = 44
	pcmFormat     = 1
)

// EncodeWAV writes samples as a 16-bit PCM mono WAV to w.
func EncodeWAV(w io.Writer, samples []float32, sampleRate int) error {
	dataSize := len(samples) * 2
	byteRate := sampleRate * Channels * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(Channels*2)) // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))         // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	pcm := make([]byte, dataSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(FloatToPCM(s)))
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return nil
}

// SaveWAV writes samples to path as a 16-bit PCM mono WAV file.
func SaveWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()
	return EncodeWAV(f, samples, sampleRate)
}

// DecodeWAV reads a 16-bit PCM WAV, returning float32 samples and the sample
// rate. Multi-channel input is mixed down to mono by averaging.
func DecodeWAV(r io.Reader) ([]float32, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV: %w", err)
	}
	if len(data) < wavHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAV file")
	}

	// Walk chunks to find fmt and data; some writers insert extra chunks.
	var (
		sampleRate int
		channels   int
		bits       int
		pcm        []byte
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("malformed fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body:]))
			if format != pcmFormat {
				return nil, 0, fmt.Errorf("unsupported WAV format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
		case "data":
			pcm = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	if bits != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d (want 16)", bits)
	}
	if channels < 1 {
		return nil, 0, fmt.Errorf("invalid channel count %d", channels)
	}

	frames := len(pcm) / (2 * channels)
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(pcm[(i*channels+c)*2:]))
			sum += float64(v) / 32767.0
		}
		samples[i] = float32(sum / float64(channels))
	}
	return samples, sampleRate, nil
}

// LoadWAV reads a WAV file from path.
func LoadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

// FloatToPCM converts one float32 sample to a 16-bit PCM value, clipping to
// the valid range.
func FloatToPCM(s float32) int16 {
	v := float64(s)
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(math.Round(v * 32767))
}

// FloatsToPCM converts float32 samples to little-endian 16-bit PCM bytes.
func FloatsToPCM(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(FloatToPCM(s)))
	}
	return out
}

// PCMToFloats converts little-endian 16-bit PCM bytes to float32 samples.
// Same 32767 scale as FloatToPCM, so in-range samples round-trip losslessly.
func PCMToFloats(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32767.0
	}
	return out
}
