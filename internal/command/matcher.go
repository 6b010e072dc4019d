package command

import (
	"regexp"
	"strings"
)

// phraseEntry binds one command to its trigger phrases. Entries are kept in
// slices, not maps, so matching order is fixed and deterministic.
type phraseEntry struct {
	kind    Kind
	phrases []string
}

// Phrase tables per language. The user's table is checked first, then the
// English table is always consulted regardless of user language.
var phraseTables = map[string][]phraseEntry{
	"en": {
		{KindRead, []string{"read", "start reading", "read page", "read this"}},
		{KindPause, []string{"pause", "hold on", "wait"}},
		{KindStop, []string{"stop", "cancel", "end reading", "stop reading"}},
		{KindTranslate, []string{"translate", "translate page", "translate this"}},
		{KindShowCommands, []string{"show commands", "commands", "help", "what can you say", "what can i say"}},
		{KindSummarise, []string{"summarise", "summarize", "summary", "summarize this", "summarise this"}},
	},
	"hi": {
		{KindRead, []string{"पढ़ो"}},
		{KindPause, []string{"रुको", "ठहरो"}},
		{KindStop, []string{"बंद करो", "रोक दो"}},
		{KindTranslate, []string{"अनुवाद", "अनुवाद करो", "अनुवाद करो पेज"}},
		{KindShowCommands, []string{"कमांड दिखाओ", "कमांड", "सहायता", "help"}},
		{KindSummarise, []string{"सारांश", "सारांश बनाओ"}},
	},
	"zh": {
		{KindRead, []string{"读", "朗读"}},
		{KindPause, []string{"暂停"}},
		{KindStop, []string{"停止"}},
		{KindTranslate, []string{"翻译"}},
		{KindShowCommands, []string{"显示命令", "命令", "帮助"}},
		{KindSummarise, []string{"总结"}},
	},
	"es": {
		{KindRead, []string{"leer"}},
		{KindPause, []string{"pausa"}},
		{KindStop, []string{"detener"}},
		{KindTranslate, []string{"traducir"}},
		{KindShowCommands, []string{"comandos", "mostrar comandos", "ayuda"}},
		{KindSummarise, []string{"resumir"}},
	},
	"fr": {
		{KindRead, []string{"lire"}},
		{KindPause, []string{"pause"}},
		{KindStop, []string{"arrêter", "stop"}},
		{KindTranslate, []string{"traduire"}},
		{KindShowCommands, []string{"commandes", "afficher les commandes", "aide"}},
		{KindSummarise, []string{"résumer"}},
	},
}

var (
	interrogativeRe = regexp.MustCompile(`^(what|who|how|when|why|where|which|is|are)\b`)
	askMarkerRe     = regexp.MustCompile(`(?i)(ask|tell me|explain|define|बताओ|बताइए|请问|请告诉我|पुछो)`)
	askPrefixRe     = regexp.MustCompile(`(?i)^(ask|tell me|explain|define)\s*`)
)

// Match maps raw text to commands using the static phrase tables.
// Pure and synchronous: same input, same output.
//
// Resolution order: user-language table, then English table, then the
// interrogative heuristic, then ask-marker stripping, then unknown.
func Match(raw, lang string) []Command {
	trimmed := strings.TrimSpace(raw)
	normalized := strings.ToLower(trimmed)

	if primary, ok := phraseTables[lang]; ok && lang != "en" {
		if cmd, ok := matchTable(primary, normalized, trimmed); ok {
			return []Command{cmd}
		}
	}
	if cmd, ok := matchTable(phraseTables["en"], normalized, trimmed); ok {
		return []Command{cmd}
	}

	// Utterances that look like questions become ask commands.
	if interrogativeRe.MatchString(normalized) || strings.HasSuffix(normalized, "?") {
		return []Command{{Kind: KindAsk, Question: trimmed, Raw: trimmed}}
	}

	// Explicit ask-intent markers ("ask ...", "tell me ...") in any
	// supported language; strip the marker prefix when present.
	if askMarkerRe.MatchString(trimmed) {
		question := strings.TrimSpace(askPrefixRe.ReplaceAllString(trimmed, ""))
		if question == "" {
			question = trimmed
		}
		return []Command{{Kind: KindAsk, Question: question, Raw: trimmed}}
	}

	return []Command{Unknown(trimmed)}
}

func matchTable(table []phraseEntry, normalized, raw string) (Command, bool) {
	for _, entry := range table {
		for _, phrase := range entry.phrases {
			if phraseMatches(normalized, phrase) {
				return Command{Kind: entry.kind, Raw: raw}, true
			}
		}
	}
	return Command{}, false
}

// phraseMatches reports whether phrase occurs in text as an exact match,
// a whole-token prefix or suffix, or bounded by spaces. This is substring
// containment with boundary heuristics, not strict tokenization — CJK
// phrases have no space boundaries, so bare containment applies to them.
func phraseMatches(text, phrase string) bool {
	p := strings.ToLower(phrase)
	switch {
	case text == p:
		return true
	case strings.HasPrefix(text, p+" "):
		return true
	case strings.HasSuffix(text, " "+p):
		return true
	case strings.Contains(text, " "+p+" "):
		return true
	}
	// No space boundaries to anchor on for languages written without
	// spaces; fall back to plain containment.
	if !strings.ContainsRune(p, ' ') && !isSpaceDelimited(p) {
		return strings.Contains(text, p)
	}
	return false
}

// isSpaceDelimited reports whether the phrase is written in a script that
// uses spaces between words (ASCII letters here; CJK phrases are not).
func isSpaceDelimited(phrase string) bool {
	for _, r := range phrase {
		if r > 0x2E80 { // CJK and beyond
			return false
		}
	}
	return true
}
