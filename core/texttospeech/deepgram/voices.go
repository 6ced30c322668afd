package deepgram

import "github.com/koscakluka/ema-voiceloop/core/texttospeech"

const defaultVoice = "aura-2-thalia-en"

var availableVoices = []texttospeech.Voice{
	{Name: "aura-2-thalia-en", Language: "en-US"},
	{Name: "aura-2-andromeda-en", Language: "en-US"},
	{Name: "aura-2-helena-en", Language: "en-US"},
	{Name: "aura-2-apollo-en", Language: "en-US"},
	{Name: "aura-2-draco-en", Language: "en-GB"},
	{Name: "aura-2-pandora-en", Language: "en-GB"},
	{Name: "aura-2-nestor-es", Language: "es-ES"},
	{Name: "aura-2-celeste-es", Language: "es-CO"},
	{Name: "aura-2-agathe-fr", Language: "fr-FR"},
	{Name: "aura-2-hector-fr", Language: "fr-FR"},
	{Name: "aura-2-julius-de", Language: "de-DE"},
	{Name: "aura-2-viktoria-de", Language: "de-DE"},
	{Name: "aura-2-livia-it", Language: "it-IT"},
	{Name: "aura-2-dionisio-it", Language: "it-IT"},
	{Name: "aura-2-fujin-ja", Language: "ja-JP"},
	{Name: "aura-2-izanami-ja", Language: "ja-JP"},
}

// GetAvailableVoices returns the voices Deepgram's Aura 2 models provide.
func GetAvailableVoices() []texttospeech.Voice {
	return append([]texttospeech.Voice(nil), availableVoices...)
}
