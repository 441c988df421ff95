// Package audio holds the recording session's sample buffer, the waveform
// renderer, WAV file I/O, and the malgo-backed capture and playback devices.
package audio

import "fmt"

// SampleRate is the fixed session sample rate in Hz. 16kHz mono is what the
// speech models expect; everything in this package assumes it.
const SampleRate = 16000

// Channels is the number of audio channels (mono).
const Channels = 1

// FormatTime formats a duration in seconds as MM:SS.s.
func FormatTime(seconds float64) string {
	mins := int(seconds) / 60
	secs := seconds - float64(mins*60)
	return fmt.Sprintf("%02d:%04.1f", mins, secs)
}
