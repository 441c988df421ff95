package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/emmett/parley/internal/app"
	"github.com/emmett/parley/internal/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	modelName   = flag.String("model", "", "Use a specific model (default: vosk-model-small-en-us-0.15)")
	ttsEngine   = flag.String("tts-engine", "piper", "TTS engine: piper, daemon, or empty to disable synthesis tools")
	daemonURL   = flag.String("daemon-url", "", "Base URL of a running ttsd (for --tts-engine daemon)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley MCP v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	applyConfigDefaults(cfg)

	handler := app.NewMCPHandler(*modelName, *ttsEngine, *daemonURL, Version, GitCommit)
	if err := handler.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["model"] && cfg.Model.Default != "" {
		*modelName = cfg.Model.Default
	}
	if !flagsSet["tts-engine"] && cfg.TTS.Engine != "" {
		*ttsEngine = cfg.TTS.Engine
	}
	if !flagsSet["daemon-url"] && *daemonURL == "" {
		*daemonURL = cfg.DaemonURL()
	}
}
