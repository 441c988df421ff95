package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/config"
	"github.com/emmett/parley/internal/tts"
	"github.com/emmett/parley/internal/voicedemo"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	engineName  = flag.String("tts-engine", "", "TTS engine: piper or daemon (default: piper)")
	daemonURL   = flag.String("daemon-url", "", "Base URL of a running ttsd (for --tts-engine daemon)")
	modelPath   = flag.String("model-path", "", "TTS model file or directory")
	binaryPath  = flag.String("binary", "", "Synthesizer binary (default: piper)")
	listVoices  = flag.Bool("list", false, "Print the voice catalog and exit")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley Voices v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	if *listVoices {
		printCatalog()
		return
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	applyConfigDefaults(cfg)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	engine, err := tts.NewEngine(*engineName, *daemonURL)
	if err != nil {
		return err
	}

	engineConf := tts.DefaultConfig(*modelPath)
	if *binaryPath != "" {
		engineConf.BinaryPath = *binaryPath
	}
	if err := engine.Initialize(engineConf); err != nil {
		return fmt.Errorf("failed to initialize TTS engine: %w", err)
	}
	defer engine.Close()

	program := tea.NewProgram(voicedemo.New(engine, audio.NewMalgoPlayer()), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func printCatalog() {
	for _, lang := range tts.Catalog {
		fmt.Printf("%s (%s):\n", lang.Name, lang.Code)
		for _, v := range lang.Voices {
			notes := ""
			if v.Notes != "" {
				notes = " - " + v.Notes
			}
			fmt.Printf("  %-22s %s, %s%s\n", v.ID, v.Name(), v.Gender(), notes)
		}
		fmt.Println()
	}
}

func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["tts-engine"] && *engineName == "" {
		*engineName = cfg.TTS.Engine
	}
	if !flagsSet["daemon-url"] && *daemonURL == "" {
		*daemonURL = cfg.DaemonURL()
	}
	if !flagsSet["model-path"] && cfg.TTS.ModelPath != "" {
		*modelPath = cfg.TTS.ModelPath
	}
	if !flagsSet["binary"] && cfg.TTS.BinaryPath != "" {
		*binaryPath = cfg.TTS.BinaryPath
	}
}
