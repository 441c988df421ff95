package tts

import "strings"

// DefaultVoiceID is the voice used when none is specified.
const DefaultVoiceID = "af_heart"

// LangMeta holds per-language metadata keyed by voice ID prefix.
type LangMeta struct {
	Code        string // espeak-style language code
	Nationality string
}

// VoiceLangMeta maps a voice ID's first letter to its language metadata.
var VoiceLangMeta = map[byte]LangMeta{
	'a': {"en-us", "American"},
	'b': {"en-gb", "British"},
	'j': {"ja", "Japanese"},
	'z': {"cmn", "Chinese"},
	'e': {"es", "Spanish"},
	'f': {"fr-fr", "French"},
	'h': {"hi", "Hindi"},
	'i': {"it", "Italian"},
	'p': {"pt-br", "Brazilian Portuguese"},
}

// Voice is a catalog entry. Display properties derive from the voice ID
// (e.g. "af_heart" is an American female named Heart); the override fields
// exist for voices whose IDs don't follow the convention.
type Voice struct {
	ID    string
	Notes string

	// Overrides for non-standard voice IDs. Empty means "derive from ID".
	NameOverride   string
	GenderOverride string
	LangOverride   string
	RefAudio       string // reference clip for cloning voices
}

// Name returns the display name, derived from the ID unless overridden.
func (v Voice) Name() string {
	if v.NameOverride != "" {
		return v.NameOverride
	}
	if _, rest, ok := strings.Cut(v.ID, "_"); ok && rest != "" {
		return strings.ToUpper(rest[:1]) + rest[1:]
	}
	return v.ID
}

// Gender derives from the ID's second letter ('f' = Female, else Male)
// unless overridden.
func (v Voice) Gender() string {
	if v.GenderOverride != "" {
		return v.GenderOverride
	}
	if len(v.ID) > 1 && v.ID[1] == 'f' {
		return "Female"
	}
	return "Male"
}

// LangCode derives from the ID's first letter unless overridden.
func (v Voice) LangCode() string {
	if v.LangOverride != "" {
		return v.LangOverride
	}
	if len(v.ID) > 0 {
		if meta, ok := VoiceLangMeta[v.ID[0]]; ok {
			return meta.Code
		}
	}
	return "en-us"
}

// Nationality derives from the language metadata.
func (v Voice) Nationality() string {
	if v.LangOverride == "cmn" {
		return "Chinese"
	}
	if len(v.ID) > 0 {
		if meta, ok := VoiceLangMeta[v.ID[0]]; ok {
			return meta.Nationality
		}
	}
	return ""
}

// NationalityArticle returns "a" or "an" to precede the nationality.
func (v Voice) NationalityArticle() string {
	return Article(v.Nationality())
}

// Greeting returns the language-appropriate greeting template.
func (v Voice) Greeting() string {
	if v.LangOverride == "cmn" {
		return GreetingForLang('z')
	}
	if len(v.ID) > 0 {
		return GreetingForLang(v.ID[0])
	}
	return DefaultGreeting
}

// Article returns "an" if word starts with a vowel, else "a".
func Article(word string) string {
	if word == "" {
		return "a"
	}
	if strings.ContainsRune("aeiouAEIOU", rune(word[0])) {
		return "an"
	}
	return "a"
}

// langGreetings maps a voice prefix to its greeting template. Placeholders:
// {name}, {nationality_article}, {nationality}, {gender}, {notes}.
var langGreetings = map[byte]string{
	'a': "Hi! I'm {name}, {nationality_article} {nationality} {gender}. How can I help you today?",
	'b': "Hello! I'm {name}, {nationality_article} {nationality} {gender}. How may I assist you?",
	'j': "こんにちは！私は{name}です。{nationality}の{gender}です。今日はどのようにお手伝いできますか？",
	'z': "你好！我是{name}，{nationality_article}{nationality}{gender}。今天我能帮你什么忙？",
	'e': "¡Hola! Soy {name}, {nationality_article} {gender} {nationality}. ¿En qué puedo ayudarte hoy?",
	'f': "Bonjour ! Je suis {name}, {nationality_article} {gender} {nationality}. Comment puis-je vous aider ?",
	'h': "नमस्ते! मैं {name} हूं, {nationality_article} {nationality} {gender}। आज मैं आपकी कैसे मदद कर सकती हूं?",
	'i': "Ciao! Sono {name}, {nationality_article} {gender} {nationality}. Come posso aiutarti oggi?",
	'p': "Olá! Eu sou {name}, {nationality_article} {gender} {nationality}. Como posso ajudá-lo hoje?",
}

// DefaultGreeting is the fallback greeting template.
var DefaultGreeting = langGreetings['a']

// GreetingForLang returns the greeting template for a voice prefix.
func GreetingForLang(prefix byte) string {
	if g, ok := langGreetings[prefix]; ok {
		return g
	}
	return DefaultGreeting
}

// ExpandGreeting substitutes the voice's properties into a greeting
// template's placeholders.
func ExpandGreeting(template string, v Voice) string {
	r := strings.NewReplacer(
		"{name}", v.Name(),
		"{nationality_article}", v.NationalityArticle(),
		"{nationality}", v.Nationality(),
		"{gender}", v.Gender(),
		"{notes}", v.Notes,
	)
	return r.Replace(template)
}

// Language is a named group of voices in the catalog.
type Language struct {
	Name   string
	Code   string
	Voices []Voice
}

// Catalog is the demo voice catalog, grouped by language.
var Catalog = []Language{
	{"American English", "en-us", []Voice{
		{ID: "af_alloy"},
		{ID: "af_aoede"},
		{ID: "af_bella", Notes: "warm, husky"},
		{ID: "af_heart", Notes: "default"},
		{ID: "af_jessica"},
		{ID: "af_kore"},
		{ID: "af_nicole", Notes: "ASMR"},
		{ID: "af_nova"},
		{ID: "af_river"},
		{ID: "af_sarah"},
		{ID: "af_sky"},
		{ID: "am_adam"},
		{ID: "am_echo"},
		{ID: "am_eric"},
		{ID: "am_fenrir"},
		{ID: "am_liam"},
		{ID: "am_michael"},
		{ID: "am_onyx"},
		{ID: "am_puck"},
		{ID: "am_santa"},
	}},
	{"British English", "en-gb", []Voice{
		{ID: "bf_alice"},
		{ID: "bf_emma"},
		{ID: "bf_isabella"},
		{ID: "bf_lily"},
		{ID: "bm_daniel"},
		{ID: "bm_fable"},
		{ID: "bm_george"},
		{ID: "bm_lewis"},
	}},
	{"Japanese", "ja", []Voice{
		{ID: "jf_alpha"},
		{ID: "jf_gongitsune"},
		{ID: "jf_nezumi"},
		{ID: "jf_tebukuro"},
		{ID: "jm_kumo"},
	}},
	{"Chinese", "cmn", []Voice{
		{ID: "zf_xiaobei"},
		{ID: "zf_xiaoni"},
		{ID: "zf_xiaoxiao"},
		{ID: "zf_xiaoyi"},
		{ID: "zm_yunjian"},
		{ID: "zm_yunxi"},
		{ID: "zm_yunxia"},
		{ID: "zm_yunyang"},
	}},
	{"Spanish", "es", []Voice{
		{ID: "ef_dora"},
		{ID: "em_alex"},
		{ID: "em_santa"},
	}},
	{"French", "fr-fr", []Voice{
		{ID: "ff_siwis"},
	}},
	{"Hindi", "hi", []Voice{
		{ID: "hf_alpha"},
		{ID: "hf_beta"},
		{ID: "hm_omega"},
		{ID: "hm_psi"},
	}},
	{"Italian", "it", []Voice{
		{ID: "if_sara"},
		{ID: "im_nicola"},
	}},
	{"Portuguese", "pt-br", []Voice{
		{ID: "pf_dora"},
		{ID: "pm_alex"},
		{ID: "pm_santa"},
	}},
	{"Sampled Voices", "cmn", []Voice{
		{ID: "sampled_default_zh", Notes: "default female", NameOverride: "Default",
			GenderOverride: "Female", LangOverride: "cmn",
			RefAudio: "assets/zero_shot_prompt.wav"},
		{ID: "sampled_default_en", Notes: "default female", NameOverride: "Default",
			GenderOverride: "Female", LangOverride: "en-us",
			RefAudio: "assets/zero_shot_prompt.wav"},
	}},
}

// FindVoice looks up a catalog voice by ID.
func FindVoice(id string) (Voice, bool) {
	for _, lang := range Catalog {
		for _, v := range lang.Voices {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Voice{}, false
}

// AllVoices flattens the catalog.
func AllVoices() []Voice {
	var out []Voice
	for _, lang := range Catalog {
		out = append(out, lang.Voices...)
	}
	return out
}
