package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.design/x/hotkey"
)

func TestParseCombo(t *testing.T) {
	mods, key, err := parseCombo("ctrl+shift+r")
	require.NoError(t, err)
	assert.Equal(t, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, mods)
	assert.Equal(t, hotkey.KeyR, key)

	mods, key, err = parseCombo("F9")
	require.NoError(t, err)
	assert.Empty(t, mods)
	assert.Equal(t, hotkey.KeyF9, key)

	_, key, err = parseCombo("Ctrl + Space")
	require.NoError(t, err)
	assert.Equal(t, hotkey.KeySpace, key)
}

func TestParseComboRejectsBadInput(t *testing.T) {
	cases := []string{"", "ctrl+shift", "ctrl+a+b", "ctrl+", "ctrl+widget"}
	for _, c := range cases {
		_, _, err := parseCombo(c)
		assert.Error(t, err, "combo %q", c)
	}
}
