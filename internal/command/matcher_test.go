package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch_Table(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		lang string
		want Kind
	}{
		{"EnglishRead", "read", "en", KindRead},
		{"EnglishReadPhrase", "start reading", "en", KindRead},
		{"EnglishPause", "pause", "en", KindPause},
		{"EnglishStop", "stop", "en", KindStop},
		{"EnglishTranslate", "translate this", "en", KindTranslate},
		{"EnglishHelp", "help", "en", KindShowCommands},
		{"EnglishSummarize", "summarize", "en", KindSummarise},
		{"SpanishTranslate", "traducir", "es", KindTranslate},
		{"SpanishRead", "leer", "es", KindRead},
		{"FrenchStop", "arrêter", "fr", KindStop},
		{"ChineseTranslate", "翻译", "zh", KindTranslate},
		{"ChinesePause", "暂停", "zh", KindPause},
		{"HindiRead", "पढ़ो", "hi", KindRead},
		{"HindiPause", "रुको", "hi", KindPause},
		{"HindiStop", "बंद करो", "hi", KindStop},
		{"HindiTranslate", "अनुवाद करो", "hi", KindTranslate},
		{"HindiShowCommands", "कमांड दिखाओ", "hi", KindShowCommands},
		{"HindiSummarise", "सारांश", "hi", KindSummarise},
		{"CaseInsensitive", "READ", "en", KindRead},
		{"SurroundingWhitespace", "  stop  ", "en", KindStop},
		{"EmbeddedWithBoundaries", "please stop now", "en", KindStop},
		{"Gibberish", "asdkjasd", "en", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.raw, tt.lang)
			if len(got) != 1 {
				t.Fatalf("Match(%q, %q) returned %d commands, want 1", tt.raw, tt.lang, len(got))
			}
			if got[0].Kind != tt.want {
				t.Errorf("Match(%q, %q) = %s, want %s", tt.raw, tt.lang, got[0].Kind, tt.want)
			}
		})
	}
}

func TestMatch_EnglishFallbackForUnsupportedLanguage(t *testing.T) {
	// English phrases are recognized regardless of the user language,
	// including languages with no table at all.
	got := Match("stop", "xx")
	want := []Command{{Kind: KindStop, Raw: "stop"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_EnglishFallbackForSupportedLanguage(t *testing.T) {
	// A Spanish user saying an English phrase still gets matched.
	got := Match("translate", "es")
	if got[0].Kind != KindTranslate {
		t.Errorf("Match(\"translate\", \"es\") = %s, want %s", got[0].Kind, KindTranslate)
	}
}

func TestMatch_UserLanguageCheckedBeforeEnglish(t *testing.T) {
	// "pause" exists in both the French and English tables; the result is
	// identical, but the French "stop" alias proves the French table wins.
	got := Match("stop", "fr")
	if got[0].Kind != KindStop {
		t.Errorf("Match(\"stop\", \"fr\") = %s, want %s", got[0].Kind, KindStop)
	}
}

func TestMatch_InterrogativeFallback(t *testing.T) {
	raw := "what is this page about?"
	got := Match(raw, "en")
	want := []Command{{Kind: KindAsk, Question: raw, Raw: raw}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_QuestionMarkSuffix(t *testing.T) {
	got := Match("the capital of France?", "en")
	if got[0].Kind != KindAsk {
		t.Fatalf("expected ask, got %s", got[0].Kind)
	}
	if got[0].Question != "the capital of France?" {
		t.Errorf("question = %q", got[0].Question)
	}
}

func TestMatch_AskMarkerStripsPrefix(t *testing.T) {
	got := Match("tell me about quantum computing", "en")
	if got[0].Kind != KindAsk {
		t.Fatalf("expected ask, got %s", got[0].Kind)
	}
	if got[0].Question != "about quantum computing" {
		t.Errorf("question = %q, want marker prefix stripped", got[0].Question)
	}
}

func TestMatch_AskMarkerNonEnglish(t *testing.T) {
	got := Match("请告诉我这个页面的内容", "zh")
	if got[0].Kind != KindAsk {
		t.Fatalf("expected ask, got %s", got[0].Kind)
	}
	// No strippable English prefix, so the question is the full utterance.
	if got[0].Question != "请告诉我这个页面的内容" {
		t.Errorf("question = %q", got[0].Question)
	}
}

func TestMatch_NoPartialWordMatch(t *testing.T) {
	// "stopwatch" must not trigger stop: boundary heuristics require a
	// whole token.
	got := Match("my stopwatch broke", "en")
	if got[0].Kind == KindStop {
		t.Errorf("Match matched stop inside stopwatch")
	}
}

func TestMatch_AllTablePhrasesResolve(t *testing.T) {
	// Every phrase listed under a command in any language table must map
	// back to that command when matched in that language.
	for lang, table := range phraseTables {
		for _, entry := range table {
			for _, phrase := range entry.phrases {
				got := Match(phrase, lang)
				if len(got) != 1 || got[0].Kind != entry.kind {
					t.Errorf("Match(%q, %q) = %v, want kind %s", phrase, lang, got, entry.kind)
				}
			}
		}
	}
}

func TestCommandsCard_FallsBackToEnglish(t *testing.T) {
	card := CommandsCard("xx")
	if card.Title != "Voice Commands" {
		t.Errorf("unexpected fallback card: %+v", card)
	}
	if got := CommandsCard("es").Title; got != "Comandos de voz" {
		t.Errorf("spanish card title = %q", got)
	}
	if got := CommandsCard("hi").Title; got != "वॉयस कमांड्स" {
		t.Errorf("hindi card title = %q", got)
	}
}

func TestLanguageFullName(t *testing.T) {
	if got := LanguageFullName("zh"); got != "Simplified Chinese" {
		t.Errorf("LanguageFullName(zh) = %q", got)
	}
	if got := LanguageFullName("nope"); got != "English" {
		t.Errorf("LanguageFullName(nope) = %q, want English default", got)
	}
}
