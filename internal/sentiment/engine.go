package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode/utf8"
)

// Thresholds are the classification cut-offs of each scoring policy.
type Thresholds struct {
	// Polarity is exclusive: p > t is positive, p < -t negative.
	Polarity float64
	// Valence is inclusive: c >= t is positive, c <= -t negative.
	Valence float64
	// Combined is exclusive, like Polarity.
	Combined float64
}

// Weights are the contributions of each scorer to a combined verdict.
type Weights struct {
	Polarity float64
	Valence  float64
}

// Config holds the numeric policy of an Engine.
type Config struct {
	Thresholds Thresholds
	Weights    Weights
}

// DefaultConfig returns the calibrated thresholds and weights.
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{Polarity: 0.2, Valence: 0.05, Combined: 0.15},
		Weights:    Weights{Polarity: 0.4, Valence: 0.6},
	}
}

// Validate checks that thresholds are non-negative and weights sum to one.
func (c Config) Validate() error {
	t := c.Thresholds
	if t.Polarity < 0 || t.Valence < 0 || t.Combined < 0 {
		return fmt.Errorf("sentiment: thresholds must be non-negative: %+v", t)
	}
	w := c.Weights
	if w.Polarity < 0 || w.Valence < 0 {
		return fmt.Errorf("sentiment: weights must be non-negative: %+v", w)
	}
	if math.Abs(w.Polarity+w.Valence-1) > 1e-9 {
		return fmt.Errorf("sentiment: weights must sum to 1, got %.3f", w.Polarity+w.Valence)
	}
	return nil
}

// Engine runs the normalize → score → reconcile pipeline. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	polarity PolarityScorer
	valence  ValenceScorer
	cfg      Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig overrides the default thresholds and weights.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithValenceScorer sets the second scorer. A nil scorer leaves the engine in
// polarity-only mode.
func WithValenceScorer(v ValenceScorer) Option {
	return func(e *Engine) {
		e.valence = v
	}
}

// NewEngine builds an engine around a polarity scorer.
func NewEngine(polarity PolarityScorer, opts ...Option) (*Engine, error) {
	if polarity == nil {
		return nil, fmt.Errorf("%w: polarity scorer is required", ErrScorerUnavailable)
	}

	e := &Engine{polarity: polarity, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// NewDefaultEngine loads the embedded polarity lexicon and, when withVader is set,
// the VADER scorer. A broken polarity lexicon is a startup error; an unavailable
// VADER scorer only degrades the engine to polarity-only scoring.
func NewDefaultEngine(cfg Config, withVader bool) (*Engine, error) {
	lexicon, err := DefaultLexicon()
	if err != nil {
		return nil, fmt.Errorf("%w: polarity lexicon: %w", ErrScorerUnavailable, err)
	}

	opts := []Option{WithConfig(cfg)}
	if withVader {
		vader, err := NewVaderScorer()
		if err != nil {
			slog.Warn("[Sentiment] VADER unavailable, falling back to polarity scoring only",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, WithValenceScorer(vader))
		}
	} else {
		slog.Info("[Sentiment] VADER disabled by configuration")
	}

	engine, err := NewEngine(NewLexiconScorer(lexicon), opts...)
	if err != nil {
		return nil, err
	}

	slog.Info("[Sentiment] Engine initialized",
		slog.Int("lexicon_entries", lexicon.Len()),
		slog.Bool("vader_available", engine.ValenceAvailable()))
	return engine, nil
}

var (
	defaultEngine *Engine
	defaultOnce   sync.Once
)

// Default returns a process-wide engine with the default configuration, built on
// first use. It panics if the embedded polarity lexicon cannot be parsed.
func Default() *Engine {
	defaultOnce.Do(func() {
		e, err := NewDefaultEngine(DefaultConfig(), true)
		if err != nil {
			panic(fmt.Errorf("[Sentiment] failed to initialize default engine: %w", err))
		}
		defaultEngine = e
	})
	return defaultEngine
}

// Analyze runs the default engine.
func Analyze(text string, method Method) Verdict {
	return Default().Analyze(text, method)
}

// Config returns the engine's numeric policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// ValenceAvailable reports whether the VADER scorer is loaded.
func (e *Engine) ValenceAvailable() bool {
	return e.valence != nil
}

// ScorePolarity runs the polarity scorer on normalized text.
func (e *Engine) ScorePolarity(normalized string) ScoreResult {
	p, s := e.polarity.Polarity(normalized)
	confidence := math.Min(math.Abs(p)+s*0.3, 1.0)
	subjectivity := round(s, 3)

	return ScoreResult{
		Sentiment:     classifyExclusive(p, e.cfg.Thresholds.Polarity),
		Score:         round(p, 3),
		Confidence:    round(confidence, 3),
		Method:        MethodPolarity,
		Subjectivity:  &subjectivity,
		rawScore:      p,
		rawConfidence: confidence,
	}
}

// ScoreValence runs the valence scorer on normalized text. It reports false when
// the scorer is unavailable.
func (e *Engine) ScoreValence(normalized string) (ScoreResult, bool) {
	if e.valence == nil {
		return ScoreResult{}, false
	}

	v := e.valence.Valence(normalized)
	c := v.Compound
	confidence := math.Abs(c)

	return ScoreResult{
		Sentiment:  classifyInclusive(c, e.cfg.Thresholds.Valence),
		Score:      round(c, 3),
		Confidence: round(confidence, 3),
		Method:     MethodVader,
		Proportions: &Proportions{
			Positive: round(v.Positive, 3),
			Neutral:  round(v.Neutral, 3),
			Negative: round(v.Negative, 3),
		},
		rawScore:      c,
		rawConfidence: confidence,
	}, true
}

// Reconcile combines scorer results into a verdict. valence may be nil when the
// second scorer is absent, in which case every method yields the polarity result.
func (e *Engine) Reconcile(polarity ScoreResult, valence *ScoreResult, method Method) Verdict {
	if valence == nil || method == MethodPolarity {
		return verdictFromResult(polarity)
	}
	if method == MethodVader {
		return verdictFromResult(*valence)
	}

	w := e.cfg.Weights
	score := polarity.RawScore()*w.Polarity + valence.RawScore()*w.Valence
	confidence := polarity.RawConfidence()*w.Polarity + valence.RawConfidence()*w.Valence

	p, v := polarity, *valence
	return Verdict{
		Sentiment:  classifyExclusive(score, e.cfg.Thresholds.Combined),
		Score:      round(score, 3),
		Confidence: round(confidence, 3),
		Method:     MethodCombined,
		Polarity:   &p,
		Vader:      &v,
	}
}

// Analyze validates, normalizes and scores text. An empty method selects
// MethodCombined. It never panics: every failure, including an unknown method,
// is returned as a neutral verdict carrying an error annotation.
func (e *Engine) Analyze(text string, method Method) (verdict Verdict) {
	method, err := ParseMethod(string(method))
	if err != nil {
		return degraded(&annotatedError{sentinel: ErrUnknownMethod, msg: err.Error()})
	}

	if !utf8.ValidString(text) || strings.TrimSpace(text) == "" {
		return degraded(ErrEmptyInput)
	}

	normalized := Normalize(text)
	if normalized == "" {
		return degraded(ErrEmptyAfterNormalization)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Sentiment] Recovered from scoring panic",
				slog.Any("panic", r))
			verdict = degraded(&annotatedError{
				sentinel: ErrInternalScoring,
				msg:      fmt.Sprintf("%s: %v", ErrInternalScoring, r),
			})
		}
	}()

	polarity := e.ScorePolarity(normalized)

	var valence *ScoreResult
	if method == MethodVader || method == MethodCombined {
		if res, ok := e.ScoreValence(normalized); ok {
			valence = &res
		}
	}

	return e.Reconcile(polarity, valence, method)
}

func classifyExclusive(x, threshold float64) Label {
	switch {
	case x > threshold:
		return Positive
	case x < -threshold:
		return Negative
	default:
		return Neutral
	}
}

func classifyInclusive(x, threshold float64) Label {
	switch {
	case x >= threshold:
		return Positive
	case x <= -threshold:
		return Negative
	default:
		return Neutral
	}
}
