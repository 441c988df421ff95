package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/models"
	"github.com/emmett/parley/internal/tts"
)

type TranscribeArgs struct {
	Audio string `json:"audio" jsonschema:"required,description=Base64-encoded audio data (16kHz mono 16-bit PCM)"`
}

type SynthesizeArgs struct {
	Text  string  `json:"text" jsonschema:"required,description=Text to synthesize"`
	Voice string  `json:"voice,omitempty" jsonschema:"description=Voice ID (e.g. af_heart)"`
	Speed float64 `json:"speed,omitempty" jsonschema:"description=Playback speed multiplier (default: 1.0)"`
}

type ListModelsArgs struct{}

type ListVoicesArgs struct{}

func (s *Server) handleTranscribeAudio(ctx context.Context, req *sdk.CallToolRequest, args TranscribeArgs) (*sdk.CallToolResult, any, error) {
	pcm, err := base64.StdEncoding.DecodeString(args.Audio)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid base64 audio: %w", err)
	}
	if len(pcm) < 2 {
		return nil, nil, fmt.Errorf("audio payload is empty")
	}

	samples := audio.PCMToFloats(pcm)
	segments, err := s.sttEngine.Transcribe(ctx, samples, audio.SampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("transcription failed: %w", err)
	}

	content := make([]sdk.Content, 0, len(segments)+1)
	for _, seg := range segments {
		content = append(content, &sdk.TextContent{
			Text: fmt.Sprintf("[%s - %s] %s",
				audio.FormatTime(seg.Start), audio.FormatTime(seg.End), seg.Text),
		})
	}
	if len(content) == 0 {
		content = append(content, &sdk.TextContent{Text: "(no speech detected)"})
	}

	return &sdk.CallToolResult{Content: content}, nil, nil
}

func (s *Server) handleSynthesizeSpeech(ctx context.Context, req *sdk.CallToolRequest, args SynthesizeArgs) (*sdk.CallToolResult, any, error) {
	if args.Text == "" {
		return nil, nil, fmt.Errorf("text is required")
	}

	samples, rate, err := s.ttsEngine.Synthesize(ctx, tts.SynthesizeRequest{
		Text:  args.Text,
		Voice: args.Voice,
		Speed: float32(args.Speed),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("synthesis failed: %w", err)
	}

	var wav bytes.Buffer
	if err := audio.EncodeWAV(&wav, samples, rate); err != nil {
		return nil, nil, fmt.Errorf("encoding audio: %w", err)
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: fmt.Sprintf("Synthesized %s of audio at %d Hz",
				audio.FormatTime(float64(len(samples))/float64(rate)), rate)},
			&sdk.TextContent{Text: base64.StdEncoding.EncodeToString(wav.Bytes())},
		},
	}, nil, nil
}

func (s *Server) handleListModels(ctx context.Context, req *sdk.CallToolRequest, args ListModelsArgs) (*sdk.CallToolResult, any, error) {
	downloaded, err := models.ListDownloadedModels()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list models: %w", err)
	}

	content := []sdk.Content{
		&sdk.TextContent{Text: fmt.Sprintf("Downloaded models (%d):", len(downloaded))},
	}

	for _, model := range downloaded {
		content = append(content, &sdk.TextContent{Text: fmt.Sprintf("- %s", model)})
	}

	return &sdk.CallToolResult{Content: content}, nil, nil
}

func (s *Server) handleListVoices(ctx context.Context, req *sdk.CallToolRequest, args ListVoicesArgs) (*sdk.CallToolResult, any, error) {
	var content []sdk.Content
	for _, lang := range tts.Catalog {
		content = append(content, &sdk.TextContent{
			Text: fmt.Sprintf("%s (%s):", lang.Name, lang.Code),
		})
		for _, v := range lang.Voices {
			content = append(content, &sdk.TextContent{
				Text: fmt.Sprintf("- %s: %s, %s", v.ID, v.Name(), v.Gender()),
			})
		}
	}
	return &sdk.CallToolResult{Content: content}, nil, nil
}
