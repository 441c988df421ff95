package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoCapturer implements the Capturer interface using malgo.
type MalgoCapturer struct {
	config       CaptureConfig
	device       *malgo.Device
	malgoContext *malgo.AllocatedContext
	blocks       chan []float32
	errors       chan error
	running      bool
	mu           sync.RWMutex
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewMalgoCapturer creates a new malgo-based audio capturer.
func NewMalgoCapturer(config CaptureConfig) (*MalgoCapturer, error) {
	return &MalgoCapturer{
		config:   config,
		blocks:   make(chan []float32, config.BlockBufferSize),
		errors:   make(chan error, 10),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins audio capture.
func (m *MalgoCapturer) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("capturer is already running")
	}
	m.running = true
	// Fresh channels per run so the capturer can be restarted after Stop.
	m.blocks = make(chan []float32, m.config.BlockBufferSize)
	m.errors = make(chan error, 10)
	m.stopChan = make(chan struct{})
	blocks, errors := m.blocks, m.errors
	m.mu.Unlock()

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		m.setStopped()
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoContext = malgoCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = m.config.Channels
	deviceConfig.SampleRate = m.config.SampleRate
	deviceConfig.PeriodSizeInFrames = m.config.BufferFrames

	// The data callback runs on the OS audio thread. It must never block:
	// the block is copied out and handed off with a non-blocking send.
	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSamples, pInputSamples []byte, framecount uint32) {
		block := bytesToFloats(pInputSamples)

		select {
		case blocks <- block:
		default:
			select {
			case errors <- fmt.Errorf("capture buffer overflow, dropping %d frames", framecount):
			default:
			}
		}
	}

	device, err := malgo.InitDevice(m.malgoContext.Context, deviceConfig, callbacks)
	if err != nil {
		m.teardownContext()
		m.setStopped()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		m.teardownContext()
		m.setStopped()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.stopChan:
			return
		}
	}()

	return nil
}

// Stop stops audio capture.
func (m *MalgoCapturer) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop capture device: %w", err)
		}
		m.device.Uninit()
	}
	m.teardownContext()

	m.wg.Wait()

	close(m.blocks)
	close(m.errors)
	return nil
}

// Blocks returns the channel of captured sample blocks for the current
// run. It is closed by Stop.
func (m *MalgoCapturer) Blocks() <-chan []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocks
}

// Errors returns a channel that receives capture errors for the current
// run. It is closed by Stop.
func (m *MalgoCapturer) Errors() <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors
}

// IsRunning returns true if capture is currently active.
func (m *MalgoCapturer) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *MalgoCapturer) setStopped() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

func (m *MalgoCapturer) teardownContext() {
	if m.malgoContext != nil {
		m.malgoContext.Uninit()
		m.malgoContext.Free()
		m.malgoContext = nil
	}
}

func bytesToFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
