// Package input listens for a global hotkey and forwards presses to the
// session's command loop. The session owns recording state; a press is
// just a toggle request.
package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.design/x/hotkey"
)

// Listener registers one global key combination and invokes a callback
// on every press.
type Listener struct {
	hk      *hotkey.Hotkey
	onPress func()
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewListener creates a listener that calls onPress for each keydown.
func NewListener(onPress func()) *Listener {
	return &Listener{
		onPress: onPress,
		done:    make(chan struct{}),
	}
}

// Start registers the combination (e.g. "ctrl+shift+r") and begins
// listening until Stop or context cancellation.
func (l *Listener) Start(ctx context.Context, combo string) error {
	mods, key, err := parseCombo(combo)
	if err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", combo, err)
	}

	l.hk = hotkey.New(mods, key)
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey %q: %w", combo, err)
	}

	ctx, l.cancel = context.WithCancel(ctx)
	go func() {
		defer close(l.done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-l.hk.Keydown():
				if !ok {
					return
				}
				if l.onPress != nil {
					l.onPress()
				}
			}
		}
	}()
	return nil
}

// Stop unregisters the combination and waits briefly for the listener
// goroutine to exit.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	if l.hk != nil {
		l.hk.Unregister()
	}
	select {
	case <-l.done:
	case <-time.After(100 * time.Millisecond):
	}
}

// parseCombo splits "mod+mod+key" into modifiers and a key. Exactly one
// non-modifier part must be present.
func parseCombo(s string) ([]hotkey.Modifier, hotkey.Key, error) {
	var (
		mods []hotkey.Modifier
		key  hotkey.Key
		seen bool
	)
	for _, part := range strings.Split(strings.ToLower(s), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			return nil, 0, fmt.Errorf("empty hotkey part")
		case "ctrl", "control":
			mods = append(mods, hotkey.ModCtrl)
		case "shift":
			mods = append(mods, hotkey.ModShift)
		case "alt", "option":
			mods = append(mods, altModifier())
		case "cmd", "command", "super", "win":
			mods = append(mods, superModifier())
		default:
			if seen {
				return nil, 0, fmt.Errorf("more than one key: %q", part)
			}
			k, ok := keyNames[part]
			if !ok {
				return nil, 0, fmt.Errorf("unknown key: %q", part)
			}
			key = k
			seen = true
		}
	}
	if !seen {
		return nil, 0, fmt.Errorf("no key specified")
	}
	return mods, key, nil
}

var keyNames = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "return": hotkey.KeyReturn, "enter": hotkey.KeyReturn,
	"tab": hotkey.KeyTab, "escape": hotkey.KeyEscape, "esc": hotkey.KeyEscape,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}
