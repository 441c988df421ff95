package main

import (
	"flag"
	"fmt"
	"os"
	"time"

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
	configFile     = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	listModels     = flag.Bool("list-models", false, "List all available models for download")
	listDownloaded = flag.Bool("list-downloaded", false, "List all downloaded models")
	downloadModel  = flag.String("download-model", "", "Download a specific model by name")
	modelName      = flag.String("model", "", "Use a specific model (default: vosk-model-small-en-us-0.15)")
	setDefault     = flag.String("set-default", "", "Set a model as the default")
	outputFormat   = flag.String("format", "text", "Transcript output format: json, text")
	outputFile     = flag.String("output", "", "Transcript output file (default: stdout)")
	outputDir      = flag.String("output-dir", "recordings", "Directory for saved WAV files and transcripts")
	audioDevice    = flag.String("device", "", "Audio input device name (use --list-devices to see available devices)")
	listDevices    = flag.Bool("list-devices", false, "List all available audio input devices")
	hotkeyStr      = flag.String("hotkey", "", "Global hotkey to toggle recording (e.g. ctrl+shift+r)")
	liveInterval   = flag.Float64("live-interval", 3.0, "Live transcription interval in seconds while recording")
	showVersion    = flag.Bool("version", false, "Show version information")
	autoDownload   = flag.Bool("auto-download", false, "Automatically download default model if not found (no prompt)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	applyConfigDefaults(cfg)

	if *showVersion {
		fmt.Printf("Parley Recorder v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	fmt.Printf("Parley Recorder v%s (commit: %s, branch: %s, built: %s)\n",
		Version, GitCommit, GitBranch, BuildTime)
	fmt.Println("Record, edit, and transcribe audio clips")
	fmt.Println()

	if *listDevices {
		dm := app.NewDeviceManager()
		if err := dm.ListDevices(); err != nil {
			os.Exit(1)
		}
		return
	}

	mgr := app.NewModelManager()

	if *listModels {
		if err := mgr.ListModels(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *listDownloaded {
		if err := mgr.ListDownloaded(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *downloadModel != "" {
		if err := mgr.Download(*downloadModel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *setDefault != "" {
		if err := mgr.SetDefault(*setDefault); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	recorder := app.NewRecorder(app.RecorderConfig{
		ModelName:    *modelName,
		OutputFormat: *outputFormat,
		OutputFile:   *outputFile,
		OutputDir:    *outputDir,
		AudioDevice:  *audioDevice,
		AutoDownload: *autoDownload,
		Hotkey:       *hotkeyStr,
		LiveInterval: time.Duration(*liveInterval * float64(time.Second)),
	})
	if err := recorder.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
	if !flagsSet["format"] && cfg.Output.Format != "" {
		*outputFormat = cfg.Output.Format
	}
	if !flagsSet["output"] && cfg.Output.File != "" {
		*outputFile = cfg.Output.File
	}
	if !flagsSet["output-dir"] && cfg.Session.OutputDir != "" {
		*outputDir = cfg.Session.OutputDir
	}
	if !flagsSet["device"] && cfg.Audio.Device != "" {
		*audioDevice = cfg.Audio.Device
	}
	if !flagsSet["live-interval"] && cfg.Session.LiveIntervalSeconds > 0 {
		*liveInterval = cfg.Session.LiveIntervalSeconds
	}
}
