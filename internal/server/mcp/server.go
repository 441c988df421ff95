// Package mcp exposes transcription and synthesis as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/parley/internal/stt"
	"github.com/emmett/parley/internal/tts"
)

type Config struct {
	ServerName    string
	ServerVersion string

	// STT
	ModelPath string

	// TTS; engine is optional, synthesis tools are omitted when nil
	TTSEngine tts.Engine
	TTSConfig tts.Config
}

type Server struct {
	config    Config
	mcpServer *sdk.Server
	sttEngine stt.Engine
	ttsEngine tts.Engine
}

func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		config: cfg,
	}

	// Initialize STT engine
	s.sttEngine = stt.NewVoskEngine()
	sttConfig := stt.DefaultConfig(cfg.ModelPath)
	if err := s.sttEngine.Initialize(sttConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize STT engine: %w", err)
	}

	// TTS engine is optional; without one only STT tools are registered
	if cfg.TTSEngine != nil {
		if err := cfg.TTSEngine.Initialize(cfg.TTSConfig); err != nil {
			s.sttEngine.Close()
			return nil, fmt.Errorf("failed to initialize TTS engine: %w", err)
		}
		s.ttsEngine = cfg.TTSEngine
	}

	// Create MCP server
	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	// Register tools
	s.registerTools()

	return s, nil
}

func (s *Server) Start() error {
	return s.mcpServer.Run(context.Background(), &sdk.StdioTransport{})
}

func (s *Server) Stop() error {
	if s.ttsEngine != nil {
		s.ttsEngine.Close()
	}
	if s.sttEngine != nil {
		s.sttEngine.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "transcribe_audio",
		Description: "Transcribe a clip of 16kHz mono 16-bit PCM audio to timed text segments",
	}, s.handleTranscribeAudio)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_models",
		Description: "List available Vosk models",
	}, s.handleListModels)

	if s.ttsEngine != nil {
		sdk.AddTool(s.mcpServer, &sdk.Tool{
			Name:        "synthesize_speech",
			Description: "Synthesize speech from text, returning base64-encoded WAV",
		}, s.handleSynthesizeSpeech)

		sdk.AddTool(s.mcpServer, &sdk.Tool{
			Name:        "list_voices",
			Description: "List available TTS voices grouped by language",
		}, s.handleListVoices)
	}
}
