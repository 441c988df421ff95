//go:build darwin

package input

import "golang.design/x/hotkey"

func altModifier() hotkey.Modifier   { return hotkey.ModOption }
func superModifier() hotkey.Modifier { return hotkey.ModCmd }
