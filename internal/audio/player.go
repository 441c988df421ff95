package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Player is the interface for audio playback sinks. Play starts playing a
// sample clip and returns immediately; Done is closed when the clip is
// exhausted or Stop is called.
type Player interface {
	Play(samples []float32, sampleRate int) error
	Stop()
	Done() <-chan struct{}
	IsPlaying() bool
}

// MalgoPlayer implements Player with a malgo playback device.
type MalgoPlayer struct {
	mu           sync.Mutex
	device       *malgo.Device
	malgoContext *malgo.AllocatedContext
	samples      []float32
	pos          int
	playing      bool
	done         chan struct{}
	closeDone    func()
}

// NewMalgoPlayer creates a new malgo-based player.
func NewMalgoPlayer() *MalgoPlayer {
	done := make(chan struct{})
	close(done) // not playing yet
	return &MalgoPlayer{done: done}
}

// Play starts playback of the given clip. Any clip already playing is
// stopped first.
func (p *MalgoPlayer) Play(samples []float32, sampleRate int) error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = Channels
	deviceConfig.SampleRate = uint32(sampleRate)

	p.samples = samples
	p.pos = 0
	done := make(chan struct{})
	var doneOnce sync.Once
	closeDone := func() { doneOnce.Do(func() { close(done) }) }

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSamples, pInputSamples []byte, framecount uint32) {
		p.mu.Lock()
		n := int(framecount)
		remaining := len(p.samples) - p.pos
		if n > remaining {
			n = remaining
		}
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(pOutputSamples[i*4:], math.Float32bits(p.samples[p.pos+i]))
		}
		p.pos += n
		exhausted := p.pos >= len(p.samples)
		p.mu.Unlock()

		// Pad the rest of the block with silence.
		for i := n * 4; i < len(pOutputSamples); i++ {
			pOutputSamples[i] = 0
		}

		if exhausted {
			closeDone()
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		malgoCtx.Free()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	p.device = device
	p.malgoContext = malgoCtx
	p.playing = true
	p.done = done
	p.closeDone = closeDone
	return nil
}

// Stop halts playback immediately and releases the device.
func (p *MalgoPlayer) Stop() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	device := p.device
	malgoCtx := p.malgoContext
	closeDone := p.closeDone
	p.device = nil
	p.malgoContext = nil
	p.mu.Unlock()

	if device != nil {
		device.Stop()
		device.Uninit()
	}
	if malgoCtx != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
	}
	if closeDone != nil {
		closeDone()
	}
}

// Done returns a channel closed when the current clip finishes or playback
// is stopped.
func (p *MalgoPlayer) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// IsPlaying returns true while a clip is playing.
func (p *MalgoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
