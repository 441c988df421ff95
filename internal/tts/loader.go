package tts

import "fmt"

// NewEngine constructs a TTS engine by name. Supported engines are
// "piper" (local subprocess) and "daemon" (HTTP client to ttsd).
func NewEngine(name, daemonURL string) (Engine, error) {
	switch name {
	case "", "piper":
		return NewPiperEngine(), nil
	case "daemon":
		if daemonURL == "" {
			return nil, fmt.Errorf("daemon engine requires a daemon URL")
		}
		return NewDaemonEngine(daemonURL), nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", name)
	}
}
