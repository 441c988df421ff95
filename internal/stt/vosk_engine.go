package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/emmett/parley/internal/audio"
)

// VoskEngine implements the Engine interface using Vosk.
type VoskEngine struct {
	model       *vosk.VoskModel
	config      Config
	mu          sync.Mutex
	initialized bool
}

// voskResult is the JSON shape of a Vosk utterance result.
type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Conf  float64 `json:"conf"`
		End   float64 `json:"end"`
		Start float64 `json:"start"`
		Word  string  `json:"word"`
	} `json:"result,omitempty"`
}

// NewVoskEngine creates a new Vosk STT engine.
func NewVoskEngine() *VoskEngine {
	return &VoskEngine{}
}

// Initialize loads the Vosk model.
func (v *VoskEngine) Initialize(config Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return fmt.Errorf("engine already initialized")
	}

	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", config.ModelPath, err)
	}
	if model == nil {
		return fmt.Errorf("failed to load model from %s: model returned nil", config.ModelPath)
	}

	v.model = model
	v.config = config
	v.initialized = true
	return nil
}

// Transcribe feeds the clip through a fresh recognizer and collects one
// segment per finalized utterance, timed by Vosk's word timestamps.
func (v *VoskEngine) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]audio.Segment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}

	// A recognizer per clip: recognizer state is cheap next to the model,
	// and a fresh one keeps clip times starting at zero.
	rec, err := vosk.NewRecognizer(v.model, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}
	defer rec.Free()
	rec.SetWords(1)

	pcm := audio.FloatsToPCM(samples)
	var segments []audio.Segment

	const chunkSize = 4000 // 125ms of 16-bit PCM at 16kHz
	for i := 0; i < len(pcm); i += chunkSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := i + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}

		if state := rec.AcceptWaveform(pcm[i:end]); state > 0 {
			seg, ok, err := parseUtterance(rec.Result())
			if err != nil {
				return nil, err
			}
			if ok {
				segments = append(segments, seg)
			}
		}
	}

	seg, ok, err := parseUtterance(rec.FinalResult())
	if err != nil {
		return nil, err
	}
	if ok {
		segments = append(segments, seg)
	}

	return segments, nil
}

// Close releases the model.
func (v *VoskEngine) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
	v.initialized = false
	return nil
}

// IsInitialized returns true if the engine is initialized.
func (v *VoskEngine) IsInitialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}

// parseUtterance converts one Vosk utterance JSON result into a segment.
// Utterances with no recognized words report ok=false.
func parseUtterance(resultJSON string) (audio.Segment, bool, error) {
	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return audio.Segment{}, false, fmt.Errorf("failed to parse result: %w", err)
	}
	if result.Text == "" || len(result.Result) == 0 {
		return audio.Segment{}, false, nil
	}
	return audio.Segment{
		Text:  result.Text,
		Start: result.Result[0].Start,
		End:   result.Result[len(result.Result)-1].End,
	}, true, nil
}
