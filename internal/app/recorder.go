package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/input"
	"github.com/emmett/parley/internal/models"
	"github.com/emmett/parley/internal/output"
	"github.com/emmett/parley/internal/session"
	"github.com/emmett/parley/internal/stt"
)

// RecorderConfig holds configuration for the interactive recorder
type RecorderConfig struct {
	ModelName    string
	OutputFormat string
	OutputFile   string
	OutputDir    string
	AudioDevice  string
	AutoDownload bool
	Hotkey       string        // optional global record toggle, e.g. "ctrl+shift+r"
	LiveInterval time.Duration // live transcription cadence, 0 = default
}

// Recorder runs the interactive record/edit/transcribe loop on the
// terminal: record a clip, then play, transcribe, trim, and save it.
type Recorder struct {
	config    RecorderConfig
	statusOut *output.ConsoleOutput
	hotkeys   *input.Listener
}

// NewRecorder creates a new Recorder
func NewRecorder(config RecorderConfig) *Recorder {
	return &Recorder{config: config}
}

// Run starts the recorder loop
func (r *Recorder) Run() error {
	mgr := NewModelManager()

	// Select and ensure model
	selectedModel, err := mgr.SelectModel(r.config.ModelName, false)
	if err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	selectedModel, err = mgr.EnsureModel(selectedModel, r.config.AutoDownload)
	if err != nil {
		return err
	}

	fmt.Printf("Using model: %s\n", selectedModel)

	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to get model path: %w", err)
	}

	// Select audio device
	deviceMgr := NewDeviceManager()
	selectedDevice, err := deviceMgr.SelectDevice(r.config.AudioDevice)
	if err != nil {
		return err
	}

	// Initialize STT engine
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
		OutputDir:    r.config.OutputDir,
		Capturer:     capturer,
		Player:       audio.NewMalgoPlayer(),
		Engine:       engine,
		LiveInterval: r.config.LiveInterval,
	})
	defer sess.Close()

	r.statusOut = output.DefaultConsoleOutput()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nExiting...")
		cancel()
	}()

	// Commands from stdin
	cmdChan := make(chan string, 4)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case cmdChan <- strings.TrimSpace(strings.ToLower(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	// Optional global hotkey toggles recording like an Enter press
	if r.config.Hotkey != "" {
		r.hotkeys = input.NewListener(func() {
			select {
			case cmdChan <- "":
			default:
			}
		})
		if err := r.hotkeys.Start(ctx, r.config.Hotkey); err != nil {
			return fmt.Errorf("failed to start hotkey listener: %w", err)
		}
		defer r.hotkeys.Stop()
		fmt.Printf("Global hotkey: %s toggles recording\n", r.config.Hotkey)
	}

	r.printHelp()

	ticker := time.NewTicker(session.TickInterval)
	defer ticker.Stop()

	lastStatus := ""
	lastLive := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			sess.Tick(now)
			if live := sess.LiveText(); live != "" && live != lastLive {
				lastLive = live
				r.statusOut.WritePartial("live: " + live)
			}
			if st := sess.Status(); st != lastStatus {
				lastStatus = st
				r.statusOut.Finalize()
				r.statusOut.Write(st)
			}
		case cmd := <-cmdChan:
			if done := r.handleCommand(sess, cmd); done {
				return nil
			}
		}
	}
}

// handleCommand dispatches one menu command; returns true to quit.
func (r *Recorder) handleCommand(sess *session.Session, cmd string) bool {
	switch cmd {
	case "", "r":
		if sess.Mode() == session.ModeRecording {
			sess.StopRecording()
		} else {
			sess.StartRecording()
		}
	case "p":
		sess.TogglePlayback()
	case "t":
		sess.TranscribeAll()
	case "d":
		sess.DeleteSelection()
	case "c":
		sess.ClearBuffer()
	case "l":
		r.printSegments(sess)
	case "s":
		if path, err := sess.Save(); err == nil && path != "" {
			r.writeTranscriptFile(sess)
		}
	case "q":
		return true
	case "h", "?":
		r.printHelp()
	default:
		r.statusOut.Write(fmt.Sprintf("Unknown command %q (h for help)", cmd))
	}
	return false
}

func (r *Recorder) printHelp() {
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  Enter  start/stop recording")
	fmt.Println("  p      play buffer (or selection)")
	fmt.Println("  t      transcribe buffer")
	fmt.Println("  l      list transcript segments")
	fmt.Println("  d      delete selection")
	fmt.Println("  c      clear buffer")
	fmt.Println("  s      save WAV + transcript")
	fmt.Println("  q      quit")
	fmt.Println()
}

func (r *Recorder) printSegments(sess *session.Session) {
	segments := sess.Buffer().Segments()
	if len(segments) == 0 {
		r.statusOut.Write("No transcript yet. Record and press t first.")
		return
	}
	formatter, err := output.NewFormatter(r.config.OutputFormat, os.Stdout)
	if err != nil {
		r.statusOut.Error(err.Error())
		return
	}
	for i, seg := range segments {
		formatter.WriteResult(output.ResultFromSegment(i, seg))
	}
	formatter.Close()
}

// writeTranscriptFile mirrors the segment list to the configured output
// file in the selected format.
func (r *Recorder) writeTranscriptFile(sess *session.Session) {
	if r.config.OutputFile == "" {
		return
	}
	segments := sess.Buffer().Segments()
	if len(segments) == 0 {
		return
	}
	f, err := os.Create(r.config.OutputFile)
	if err != nil {
		r.statusOut.Error(fmt.Sprintf("failed to create output file: %v", err))
		return
	}
	defer f.Close()

	formatter, err := output.NewFormatter(r.config.OutputFormat, f)
	if err != nil {
		r.statusOut.Error(err.Error())
		return
	}
	for i, seg := range segments {
		formatter.WriteResult(output.ResultFromSegment(i, seg))
	}
	formatter.Close()
}
