package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emmett/parley/internal/models"
	"github.com/emmett/parley/internal/server/mcp"
	"github.com/emmett/parley/internal/tts"
)

// MCPHandler handles MCP server operations
type MCPHandler struct {
	modelName string
	ttsEngine string
	daemonURL string
	version   string
	gitCommit string
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(modelName, ttsEngine, daemonURL, version, gitCommit string) *MCPHandler {
	return &MCPHandler{
		modelName: modelName,
		ttsEngine: ttsEngine,
		daemonURL: daemonURL,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Run starts the MCP server
func (h *MCPHandler) Run() error {
	fmt.Fprintf(os.Stderr, "Starting MCP server...\n")
	fmt.Fprintf(os.Stderr, "Protocol: Model Context Protocol (stdio transport)\n")
	fmt.Fprintf(os.Stderr, "Version: %s (commit: %s)\n\n", h.version, h.gitCommit)

	// Resolve STT model
	selectedModel := h.modelName
	if selectedModel == "" {
		var err error
		selectedModel, err = models.GetDefaultModel()
		if err != nil {
			return fmt.Errorf("failed to get default model: %w", err)
		}
	}

	downloaded, err := models.IsModelDownloaded(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to check for model: %w", err)
	}
	if !downloaded {
		return fmt.Errorf("model '%s' not found. Please download it first using:\n  parley-record --download-model %s", selectedModel, selectedModel)
	}

	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to get model path: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Using model: %s\n", selectedModel)
	fmt.Fprintf(os.Stderr, "Model path: %s\n\n", modelPath)

	// TTS is best-effort: without an engine the server registers only
	// the transcription tools
	var ttsEngine tts.Engine
	if h.ttsEngine != "" {
		ttsEngine, err = tts.NewEngine(h.ttsEngine, h.daemonURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "TTS disabled: %v\n\n", err)
			ttsEngine = nil
		}
	}

	h.printClientConfig(selectedModel)

	serverConfig := mcp.Config{
		ServerName:    "parley-mcp",
		ServerVersion: h.version,
		ModelPath:     modelPath,
		TTSEngine:     ttsEngine,
		TTSConfig:     tts.DefaultConfig(""),
	}

	server, err := mcp.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	fmt.Fprintf(os.Stderr, "MCP server ready. Listening on stdin/stdout...\n")
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop.\n\n")

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		fmt.Fprintf(os.Stderr, "\nShutting down MCP server...\n")
		if err := server.Stop(); err != nil {
			return fmt.Errorf("error stopping server: %w", err)
		}
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// printClientConfig prints a ready-to-paste MCP client configuration.
func (h *MCPHandler) printClientConfig(selectedModel string) {
	execPath, err := os.Executable()
	if err != nil {
		execPath = "./build/parley-mcp"
	}

	type MCPServerConfig struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}
	type MCPClientConfig struct {
		MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	}

	clientConfig := MCPClientConfig{
		MCPServers: map[string]MCPServerConfig{
			"parley": {
				Command: execPath,
				Args:    []string{"--model", selectedModel},
			},
		},
	}

	configJSON, err := json.MarshalIndent(clientConfig, "", "  ")
	if err == nil {
		fmt.Fprintf(os.Stderr, "MCP Client Configuration:\n%s\n\n", string(configJSON))
	}
}
