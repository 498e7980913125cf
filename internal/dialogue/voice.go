package dialogue

import (
	"context"
	"log"
	"strings"

	"bistro/internal/models"
)

// CategoryClassifier guesses the menu category a free-form request is
// about. Implementations usually call a language model.
type CategoryClassifier interface {
	ClassifyCategory(ctx context.Context, text string) (models.MenuCategory, error)
}

var fillers = map[string]bool{
	"um": true, "umm": true, "uh": true, "uhh": true,
	"er": true, "erm": true, "hmm": true, "ah": true,
}

var spokenWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"eleven": "11", "twelve": "12", "thirteen": "13", "fourteen": "14",
	"fifteen": "15", "sixteen": "16", "seventeen": "17", "eighteen": "18",
	"nineteen": "19", "twenty": "20",
	"first": "1", "second": "2", "third": "3", "fourth": "4", "fifth": "5",
	"zero": "0",
	"yep": "yes", "yup": "yes", "nah": "no",
}

// VoiceParser adapts speech-to-text transcripts to the keyword grammar.
// When keywords find no category at the start of an order, the
// classifier gets a chance to name one.
type VoiceParser struct {
	Keywords   KeywordParser
	Classifier CategoryClassifier
}

// Parse implements IntentParser
func (p VoiceParser) Parse(ctx context.Context, text string, phase Phase) Intent {
	normalized := NormalizeSpeech(text)
	intent := p.Keywords.Parse(ctx, normalized, phase)
	if intent.Kind != IntentUnknown || phase != PhaseInitial || p.Classifier == nil || normalized == "" {
		return intent
	}

	category, err := p.Classifier.ClassifyCategory(ctx, normalized)
	if err != nil {
		log.Printf("voice: category classifier failed: %v", err)
		return Unknown
	}
	if _, ok := models.ParseMenuCategory(string(category)); !ok {
		return Unknown
	}
	return Intent{Kind: IntentCategory, Category: category}
}

// only read as an answer when nothing else was said; "not sure" is no yes
var wholeUtterance = map[string]string{
	"sure":        "yes",
	"sure thing":  "yes",
	"of course":   "yes",
	"that's all":  "no",
	"that is all": "no",
}

// NormalizeSpeech lowercases a transcript, drops filler words and turns
// spoken numbers into digits
func NormalizeSpeech(text string) string {
	words := strings.Fields(strings.ToLower(text))
	out := words[:0]
	for _, w := range words {
		w = strings.TrimRight(w, ".,!?;:")
		if w == "" || fillers[w] {
			continue
		}
		if r, ok := spokenWords[w]; ok {
			w = r
		}
		out = append(out, w)
	}
	joined := strings.Join(out, " ")
	if r, ok := wholeUtterance[joined]; ok {
		return r
	}
	return joined
}
