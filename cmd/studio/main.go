package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emmett/parley/internal/app"
	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/config"
	"github.com/emmett/parley/internal/models"
	"github.com/emmett/parley/internal/session"
	"github.com/emmett/parley/internal/stt"
	"github.com/emmett/parley/internal/studio"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile   = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	modelName    = flag.String("model", "", "Use a specific model (default: vosk-model-small-en-us-0.15)")
	audioDevice  = flag.String("device", "", "Audio input device name")
	outputDir    = flag.String("output-dir", "recordings", "Directory for saved WAV files and transcripts")
	liveInterval = flag.Float64("live-interval", 3.0, "Live transcription interval in seconds while recording")
	autoDownload = flag.Bool("auto-download", false, "Automatically download default model if not found (no prompt)")
	showVersion  = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley Studio v%s\n", Version)
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

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	mgr := app.NewModelManager()
	selectedModel, err := mgr.SelectModel(*modelName, false)
	if err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	selectedModel, err = mgr.EnsureModel(selectedModel, *autoDownload)
	if err != nil {
		return err
	}

	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to get model path: %w", err)
	}

	deviceMgr := app.NewDeviceManager()
	selectedDevice, err := deviceMgr.SelectDevice(*audioDevice)
	if err != nil {
		return err
	}

	fmt.Println("Initializing speech recognition engine...")
	engine, err := stt.DefaultLoader.Get(stt.DefaultConfig(modelPath))
	if err != nil {
		return fmt.Errorf("failed to initialize STT engine: %w", err)
	}
	defer stt.DefaultLoader.Close()

	audioConfig := audio.DefaultCaptureConfig()
	audioConfig.DeviceID = selectedDevice.ID
	capturer, err := audio.NewCapturer(audioConfig)
	if err != nil {
		return fmt.Errorf("failed to create capturer: %w", err)
	}

	sess := session.New(session.Config{
		OutputDir:    *outputDir,
		Capturer:     capturer,
		Player:       audio.NewMalgoPlayer(),
		Engine:       engine,
		LiveInterval: time.Duration(*liveInterval * float64(time.Second)),
	})
	defer sess.Close()

	program := tea.NewProgram(studio.New(sess), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["model"] && cfg.Model.Default != "" {
		*modelName = cfg.Model.Default
	}
	if !flagsSet["device"] && cfg.Audio.Device != "" {
		*audioDevice = cfg.Audio.Device
	}
	if !flagsSet["output-dir"] && cfg.Session.OutputDir != "" {
		*outputDir = cfg.Session.OutputDir
	}
	if !flagsSet["live-interval"] && cfg.Session.LiveIntervalSeconds > 0 {
		*liveInterval = cfg.Session.LiveIntervalSeconds
	}
}
