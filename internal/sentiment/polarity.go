package sentiment

import (
	"math"
	"regexp"
	"strings"
)

const (
	// negationFactor flips and weakens a negated word ("not good" scores -0.35).
	negationFactor = -0.5

	// negationWindow is the number of tokens a negator reaches forward.
	negationWindow = 3
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}'’]+|[.,;:!?]`)

var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"none":    true,
	"nobody":  true,
	"nothing": true,
	"neither": true,
	"nor":     true,
	"cannot":  true,
	"cant":    true,
	"dont":    true,
	"doesnt":  true,
	"didnt":   true,
	"isnt":    true,
	"wasnt":   true,
	"wont":    true,
	"aint":    true,
}

// PolarityScorer produces a polarity in [-1, 1] and a subjectivity in [0, 1].
type PolarityScorer interface {
	Polarity(text string) (polarity, subjectivity float64)
}

// LexiconScorer is a PolarityScorer that averages lexicon entries over the words of
// a text, applying intensity modifiers and negation to the following scored word.
type LexiconScorer struct {
	lexicon *Lexicon
}

// NewLexiconScorer returns a scorer backed by lexicon.
func NewLexiconScorer(lexicon *Lexicon) *LexiconScorer {
	return &LexiconScorer{lexicon: lexicon}
}

// Polarity scores text. Text without lexicon words scores (0, 0).
func (s *LexiconScorer) Polarity(text string) (float64, float64) {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	var (
		sumPolarity     float64
		sumSubjectivity float64
		scored          int

		intensity = 1.0
		negated   = false
		negatedAt = 0
	)

	for i, tok := range tokens {
		if isClauseBoundary(tok) {
			intensity = 1.0
			negated = false
			continue
		}

		tok = strings.ReplaceAll(tok, "’", "'")
		if isNegator(tok) {
			negated = true
			negatedAt = i
			continue
		}
		if negated && i-negatedAt > negationWindow {
			negated = false
		}

		entry, ok := s.lexicon.Lookup(strings.Trim(tok, "'"))
		if !ok {
			continue
		}
		if entry.IsModifier() {
			intensity *= entry.Intensity
			continue
		}

		p := entry.Polarity * intensity
		subj := math.Min(entry.Subjectivity*intensity, 1.0)
		if negated {
			p *= negationFactor
			negated = false
		}
		intensity = 1.0

		sumPolarity += p
		sumSubjectivity += subj
		scored++
	}

	if scored == 0 {
		return 0, 0
	}

	polarity := clamp(sumPolarity/float64(scored), -1, 1)
	subjectivity := clamp(sumSubjectivity/float64(scored), 0, 1)
	return polarity, subjectivity
}

func isNegator(tok string) bool {
	return negators[tok] || strings.HasSuffix(tok, "n't")
}

func isClauseBoundary(tok string) bool {
	switch tok {
	case ".", ",", ";", ":", "!", "?":
		return true
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
