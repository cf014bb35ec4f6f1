package sentiment

import (
	"fmt"
	"sync"

	"github.com/jonreiter/govader"
)

// Valence is the output of a valence-aware scorer.
type Valence struct {
	Compound float64
	Positive float64
	Neutral  float64
	Negative float64
}

// ValenceScorer produces a compound valence in [-1, 1] with pos/neu/neg proportions.
type ValenceScorer interface {
	Valence(text string) Valence
}

// VaderScorer is a ValenceScorer backed by govader. govader's analyzer keeps
// scratch state between calls, so calls are serialized.
type VaderScorer struct {
	sia *govader.SentimentIntensityAnalyzer
	mu  sync.Mutex
}

// NewVaderScorer builds the VADER analyzer. A failure to load its lexicon is
// reported as ErrScorerUnavailable instead of crashing the caller.
func NewVaderScorer() (scorer *VaderScorer, err error) {
	defer func() {
		if r := recover(); r != nil {
			scorer = nil
			err = fmt.Errorf("%w: vader: %v", ErrScorerUnavailable, r)
		}
	}()

	sia := govader.NewSentimentIntensityAnalyzer()
	if sia == nil || len(sia.Lexicon) == 0 {
		return nil, fmt.Errorf("%w: vader lexicon is empty", ErrScorerUnavailable)
	}

	return &VaderScorer{sia: sia}, nil
}

// Valence scores text with VADER.
func (v *VaderScorer) Valence(text string) Valence {
	v.mu.Lock()
	defer v.mu.Unlock()

	scores := v.sia.PolarityScores(text)

	return Valence{
		Compound: scores.Compound,
		Positive: scores.Positive,
		Neutral:  scores.Neutral,
		Negative: scores.Negative,
	}
}
