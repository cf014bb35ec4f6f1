// Package sentiment scores the emotional polarity of short support messages.
//
// Two independent lexical scorers run over normalized text: a polarity/subjectivity
// lexicon scorer and a valence-aware VADER scorer. Their results are reconciled into
// a single Verdict using fixed weights, and verdicts can be aggregated into a Summary.
//
// Every exported operation is safe for concurrent use. Lexicon data is loaded once
// and treated as read-only afterwards.
package sentiment

import (
	"encoding/json"
	"fmt"
	"math"
)

// Label is the polarity category assigned to a piece of text.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Labels lists every label in presentation order.
var Labels = []Label{Positive, Neutral, Negative}

// ParseLabel accepts the lowercase label names.
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case Positive, Neutral, Negative:
		return Label(s), true
	default:
		return "", false
	}
}

// Method selects which scorer(s) produce a verdict.
type Method string

const (
	MethodPolarity Method = "polarity"
	MethodVader    Method = "vader"
	MethodCombined Method = "combined"
)

// ParseMethod resolves a method name. An empty name selects MethodCombined and
// "textblob" is kept as an alias of MethodPolarity for older clients.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", string(MethodCombined):
		return MethodCombined, nil
	case string(MethodPolarity), "textblob":
		return MethodPolarity, nil
	case string(MethodVader):
		return MethodVader, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Proportions are the share of positive, neutral and negative valence in a text.
type Proportions struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// ScoreResult is the output of a single scorer.
type ScoreResult struct {
	Sentiment    Label        `json:"sentiment"`
	Score        float64      `json:"score"`
	Confidence   float64      `json:"confidence"`
	Method       Method       `json:"method"`
	Subjectivity *float64     `json:"subjectivity,omitempty"`
	Proportions  *Proportions `json:"proportions,omitempty"`

	// unrounded values used for classification and reconciliation
	rawScore      float64
	rawConfidence float64
}

// RawScore returns the unrounded score. Results decoded from JSON only carry the
// rounded value, which is returned instead.
func (r ScoreResult) RawScore() float64 {
	if r.rawScore == 0 && r.Score != 0 {
		return r.Score
	}
	return r.rawScore
}

// RawConfidence returns the unrounded confidence.
func (r ScoreResult) RawConfidence() float64 {
	if r.rawConfidence == 0 && r.Confidence != 0 {
		return r.Confidence
	}
	return r.rawConfidence
}

// Verdict is the reconciled judgment for one message. It is created per call and
// never mutated afterwards.
type Verdict struct {
	Sentiment  Label        `json:"sentiment"`
	Score      float64      `json:"score"`
	Confidence float64      `json:"confidence"`
	Method     Method       `json:"method,omitempty"`
	Polarity   *ScoreResult `json:"polarity,omitempty"`
	Vader      *ScoreResult `json:"vader,omitempty"`
	Error      string       `json:"error,omitempty"`

	err error
}

// Failed reports whether the verdict is a degraded result carrying an error.
func (v Verdict) Failed() bool {
	return v.Error != "" || v.err != nil
}

// Err returns the error that degraded the verdict, if any. It can be matched with
// errors.Is against ErrEmptyInput, ErrEmptyAfterNormalization and ErrInternalScoring.
func (v Verdict) Err() error {
	return v.err
}

// String returns a debug representation of the verdict.
func (v Verdict) String() string {
	if v.Failed() {
		return fmt.Sprintf("%s(score=%.3f, confidence=%.3f, error=%q)", v.Sentiment, v.Score, v.Confidence, v.Error)
	}
	return fmt.Sprintf("%s(score=%.3f, confidence=%.3f, method=%s)", v.Sentiment, v.Score, v.Confidence, v.Method)
}

// UnmarshalJSON decodes a verdict and restores its error from the annotation.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	type plain Verdict
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Verdict(p)
	if v.Error != "" {
		v.err = errorFromMessage(v.Error)
	}
	return nil
}

func verdictFromResult(r ScoreResult) Verdict {
	res := r
	v := Verdict{
		Sentiment:  r.Sentiment,
		Score:      r.Score,
		Confidence: r.Confidence,
		Method:     r.Method,
	}
	switch r.Method {
	case MethodVader:
		v.Vader = &res
	default:
		v.Polarity = &res
	}
	return v
}

func degraded(err error) Verdict {
	return Verdict{
		Sentiment:  Neutral,
		Score:      0,
		Confidence: 0,
		Error:      err.Error(),
		err:        err,
	}
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
