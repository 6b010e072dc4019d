package page

import "strings"

// RedistributeWords spreads translated text across the original text runs in
// document order. Each run with more than two words takes as many translated
// words as it originally had; shorter runs (buttons, labels) keep their
// original text. The live-page apply step implements the same walk in
// page-side script.
func RedistributeWords(originals []string, translated string) []string {
	translatedWords := strings.Fields(translated)
	out := make([]string, len(originals))
	index := 0
	for i, original := range originals {
		words := strings.Fields(strings.TrimSpace(original))
		if len(words) <= 2 {
			out[i] = original
			continue
		}
		end := index + len(words)
		if end > len(translatedWords) {
			end = len(translatedWords)
		}
		if index >= end {
			out[i] = original
			continue
		}
		out[i] = strings.Join(translatedWords[index:end], " ")
		index = end
	}
	return out
}
