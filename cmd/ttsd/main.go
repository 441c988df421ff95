package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emmett/parley/internal/config"
	"github.com/emmett/parley/internal/server/ttsd"
	"github.com/emmett/parley/internal/tts"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	host        = flag.String("host", "", "Listen address (default: 127.0.0.1)")
	port        = flag.Int("port", 0, "Listen port (default: 7838)")
	idleTimeout = flag.Int("idle-timeout", -1, "Seconds of inactivity before self-shutdown, 0 to disable (default: 300)")
	modelPath   = flag.String("model-path", "", "TTS model file or directory")
	binaryPath  = flag.String("binary", "", "Synthesizer binary (default: piper)")
	voice       = flag.String("voice", "", "Default voice ID (default: af_heart)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley TTS daemon v%s\n", Version)
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

	engineConf := tts.DefaultConfig(*modelPath)
	if *binaryPath != "" {
		engineConf.BinaryPath = *binaryPath
	}
	if *voice != "" {
		engineConf.DefaultVoice = *voice
	}

	server, err := ttsd.NewServer(ttsd.Config{
		Host:        *host,
		Port:        *port,
		IdleTimeout: time.Duration(*idleTimeout) * time.Second,
		Engine:      tts.NewPiperEngine(),
		EngineConf:  engineConf,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	fmt.Printf("Parley TTS daemon v%s listening on %s\n", Version, server.Addr())
	if *idleTimeout > 0 {
		fmt.Printf("Idle shutdown after %ds without requests\n", *idleTimeout)
	}

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["host"] && *host == "" {
		*host = cfg.Daemon.Host
	}
	if !flagsSet["port"] && *port == 0 {
		*port = cfg.Daemon.Port
	}
	if !flagsSet["idle-timeout"] && *idleTimeout < 0 {
		*idleTimeout = cfg.Daemon.IdleTimeoutSeconds
	}
	if !flagsSet["model-path"] && cfg.TTS.ModelPath != "" {
		*modelPath = cfg.TTS.ModelPath
	}
	if !flagsSet["binary"] && cfg.TTS.BinaryPath != "" {
		*binaryPath = cfg.TTS.BinaryPath
	}
	if !flagsSet["voice"] && cfg.TTS.Voice != "" {
		*voice = cfg.TTS.Voice
	}
}
