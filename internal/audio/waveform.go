package audio

import "math"

// WaveformChars is the intensity ramp used to draw waveform cells, lowest
// amplitude first.
const WaveformChars = " ▁▂▃▄▅▆▇█"

// WaveformLevels is the number of intensity levels in the ramp.
const WaveformLevels = 9

// CellState describes how a waveform cell should be highlighted.
type CellState int

const (
	// CellNormal is a cell with no selection active.
	CellNormal CellState = iota
	// CellSelected is a cell inside the active selection.
	CellSelected
	// CellDimmed is a cell outside the active selection.
	CellDimmed
	// CellCursor is a cell containing the playback position.
	CellCursor
)

// Cell is one column of the rendered waveform.
type Cell struct {
	Level int // 0..WaveformLevels-1
	State CellState
}

// RenderWaveform maps samples to exactly width cells. Each cell covers a
// contiguous chunk of samples and carries the chunk's RMS amplitude,
// normalized against the loudest chunk in this call, quantized to
// WaveformLevels intensity levels. Highlighting per cell, in precedence
// order: playback cursor, then selected/dimmed when a selection is active,
// else normal. selEnd follows the buffer convention: 0 means end of samples.
//
// The function is pure; identical inputs yield identical output.
func RenderWaveform(samples []float32, width, selStart, selEnd, playPos int) []Cell {
	cells := make([]Cell, width)
	if width <= 0 {
		return cells
	}
	if len(samples) == 0 {
		return cells
	}

	chunkSize := len(samples) / width
	if chunkSize < 1 {
		chunkSize = 1
	}

	rms := make([]float64, width)
	var maxRMS float64
	for i := 0; i < width; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		if start < len(samples) {
			rms[i] = chunkRMS(samples[start:end])
		}
		if rms[i] > maxRMS {
			maxRMS = rms[i]
		}
	}

	selectionActive := selStart > 0 || selEnd > 0
	effEnd := selEnd
	if effEnd == 0 {
		effEnd = len(samples)
	}

	for i := 0; i < width; i++ {
		level := 0
		if maxRMS > 0 {
			level = int(rms[i] / maxRMS * float64(WaveformLevels-1))
		}

		chunkStart := i * chunkSize
		state := CellNormal
		switch {
		case playPos > 0 && playPos >= chunkStart && playPos < chunkStart+chunkSize:
			state = CellCursor
		case selectionActive && chunkStart >= selStart && chunkStart < effEnd:
			state = CellSelected
		case selectionActive:
			state = CellDimmed
		}

		cells[i] = Cell{Level: level, State: state}
	}

	return cells
}

func chunkRMS(chunk []float32) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(chunk)))
}
