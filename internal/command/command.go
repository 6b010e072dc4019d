// Package command implements the voice-command interpretation pipeline:
// a deterministic phrase matcher, an AI-backed fallback classifier, and the
// resolver that orchestrates the two into a normalized command list.
package command

// Kind identifies one action from the closed command vocabulary.
type Kind string

const (
	KindRead         Kind = "read"
	KindPause        Kind = "pause"
	KindStop         Kind = "stop"
	KindTranslate    Kind = "translate"
	KindShowCommands Kind = "show_commands"
	KindSummarise    Kind = "summarise"
	KindAsk          Kind = "ask"
	KindUnknown      Kind = "unknown"
)

// Command is one normalized action resolved from an utterance.
// Raw always carries the original text for diagnostics.
type Command struct {
	Kind     Kind   `json:"command"`
	Question string `json:"question,omitempty"`
	Raw      string `json:"raw"`
}

// Unknown returns the unknown command for the given raw text.
func Unknown(raw string) Command {
	return Command{Kind: KindUnknown, Raw: raw}
}

// Card is a localized command reference spoken and shown to the user.
type Card struct {
	Title    string
	Commands []string
}

// commandsCards holds the localized "show commands" card per language.
var commandsCards = map[string]Card{
	"en": {
		Title: "Voice Commands",
		Commands: []string{
			"Say 'read'",
			"Say 'pause'",
			"Say 'stop'",
			"Say 'translate'",
			"Say 'show commands'",
		},
	},
	"hi": {
		Title: "वॉयस कमांड्स",
		Commands: []string{
			"'पढ़ो' कहें",
			"'रुको' कहें",
			"'बंद करो' कहें",
			"'अनुवाद करो' कहें",
			"'कमांड दिखाओ' कहें",
		},
	},
	"zh": {
		Title:    "语音命令",
		Commands: []string{"说“读”", "说“暂停”", "说“停止”", "说“翻译”", "说“显示命令”"},
	},
	"es": {
		Title: "Comandos de voz",
		Commands: []string{
			"Di 'leer'",
			"Di 'pausa'",
			"Di 'detener'",
			"Di 'traducir'",
			"Di 'mostrar comandos'",
		},
	},
	"fr": {
		Title: "Commandes vocales",
		Commands: []string{
			"Dites 'lire'",
			"Dites 'pause'",
			"Dites 'arrêter'",
			"Dites 'traduire'",
			"Dites 'afficher les commandes'",
		},
	},
}

// CommandsCard returns the command card for lang, falling back to English.
func CommandsCard(lang string) Card {
	if card, ok := commandsCards[lang]; ok {
		return card
	}
	return commandsCards["en"]
}

// languageFullNames maps ISO-639-1-ish codes to the names used in prompts.
var languageFullNames = map[string]string{
	"en": "English",
	"zh": "Simplified Chinese",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"ur": "Urdu",
	"de": "German",
	"ar": "Arabic",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"it": "Italian",
	"pt": "Portuguese",
}

// LanguageFullName returns the display name for a language code.
// Unknown codes default to English.
func LanguageFullName(code string) string {
	if name, ok := languageFullNames[code]; ok {
		return name
	}
	return "English"
}
