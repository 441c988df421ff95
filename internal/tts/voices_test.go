package tts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceDerivedProperties(t *testing.T) {
	v := Voice{ID: "af_heart"}
	assert.Equal(t, "Heart", v.Name())
	assert.Equal(t, "Female", v.Gender())
	assert.Equal(t, "en-us", v.LangCode())
	assert.Equal(t, "American", v.Nationality())
	assert.Equal(t, "an", v.NationalityArticle())

	v = Voice{ID: "bm_george"}
	assert.Equal(t, "George", v.Name())
	assert.Equal(t, "Male", v.Gender())
	assert.Equal(t, "en-gb", v.LangCode())
	assert.Equal(t, "British", v.Nationality())
	assert.Equal(t, "a", v.NationalityArticle())

	v = Voice{ID: "jf_alpha"}
	assert.Equal(t, "ja", v.LangCode())
	assert.Equal(t, "Japanese", v.Nationality())
}

func TestVoiceOverrides(t *testing.T) {
	v, ok := FindVoice("sampled_default_zh")
	require.True(t, ok)
	assert.Equal(t, "Default", v.Name())
	assert.Equal(t, "Female", v.Gender())
	assert.Equal(t, "cmn", v.LangCode())
	assert.Equal(t, "Chinese", v.Nationality())
	assert.NotEmpty(t, v.RefAudio)
}

func TestArticle(t *testing.T) {
	assert.Equal(t, "an", Article("American"))
	assert.Equal(t, "an", Article("Italian"))
	assert.Equal(t, "a", Article("British"))
	assert.Equal(t, "a", Article("French"))
	assert.Equal(t, "a", Article(""))
}

func TestExpandGreeting(t *testing.T) {
	v := Voice{ID: "af_heart"}
	got := ExpandGreeting(v.Greeting(), v)
	assert.Equal(t, "Hi! I'm Heart, an American Female. How can I help you today?", got)
	assert.NotContains(t, got, "{")
}

func TestGreetingForUnknownPrefixFallsBack(t *testing.T) {
	assert.Equal(t, DefaultGreeting, GreetingForLang('x'))
	v := Voice{ID: "sampled_default_zh", LangOverride: "cmn"}
	assert.Equal(t, langGreetings['z'], v.Greeting())
}

func TestCatalogSanity(t *testing.T) {
	_, ok := FindVoice(DefaultVoiceID)
	assert.True(t, ok, "default voice must exist in the catalog")

	_, ok = FindVoice("no_such_voice")
	assert.False(t, ok)

	seen := make(map[string]bool)
	for _, v := range AllVoices() {
		require.NotEmpty(t, v.ID)
		assert.False(t, seen[v.ID], "duplicate voice id %q", v.ID)
		seen[v.ID] = true
	}

	for _, lang := range Catalog {
		for _, v := range lang.Voices {
			if strings.HasPrefix(v.ID, "sampled_") {
				continue
			}
			assert.Equal(t, lang.Code, v.LangCode(),
				"voice %q does not match its group's language", v.ID)
		}
	}
}
