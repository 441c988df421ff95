//go:build linux

package input

import "golang.design/x/hotkey"

// X11 modifier masks: Mod1 is Alt, Mod4 is Super.
func altModifier() hotkey.Modifier   { return hotkey.Mod1 }
func superModifier() hotkey.Modifier { return hotkey.Mod4 }
