package sentiment

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolarity struct {
	polarity     float64
	subjectivity float64
}

func (f fakePolarity) Polarity(string) (float64, float64) {
	return f.polarity, f.subjectivity
}

type fakeValence struct {
	compound float64
}

func (f fakeValence) Valence(string) Valence {
	return Valence{Compound: f.compound, Neutral: 1}
}

type panickingPolarity struct{}

func (panickingPolarity) Polarity(string) (float64, float64) {
	panic("lexicon exploded")
}

func newFakeEngine(t *testing.T, p, s float64, valence ValenceScorer) *Engine {
	t.Helper()
	e, err := NewEngine(fakePolarity{polarity: p, subjectivity: s}, WithValenceScorer(valence))
	require.NoError(t, err)
	return e
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrScorerUnavailable)

	cfg := DefaultConfig()
	cfg.Weights = Weights{Polarity: 0.5, Valence: 0.6}
	_, err = NewEngine(fakePolarity{}, WithConfig(cfg))
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Thresholds.Combined = -0.1
	_, err = NewEngine(fakePolarity{}, WithConfig(cfg))
	assert.Error(t, err)
}

func TestEngine_PolarityThresholdIsExclusive(t *testing.T) {
	tests := []struct {
		name     string
		polarity float64
		want     Label
	}{
		{name: "at positive threshold", polarity: 0.2, want: Neutral},
		{name: "above positive threshold", polarity: 0.21, want: Positive},
		{name: "at negative threshold", polarity: -0.2, want: Neutral},
		{name: "below negative threshold", polarity: -0.21, want: Negative},
		{name: "zero", polarity: 0, want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEngine(t, tt.polarity, 0, nil)
			v := e.Analyze("some text", MethodPolarity)
			assert.Equal(t, tt.want, v.Sentiment)
			assert.Equal(t, MethodPolarity, v.Method)
			assert.False(t, v.Failed())
		})
	}
}

func TestEngine_ValenceThresholdIsInclusive(t *testing.T) {
	tests := []struct {
		name     string
		compound float64
		want     Label
	}{
		{name: "at positive threshold", compound: 0.05, want: Positive},
		{name: "just below positive threshold", compound: 0.049, want: Neutral},
		{name: "at negative threshold", compound: -0.05, want: Negative},
		{name: "just above negative threshold", compound: -0.049, want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEngine(t, 0, 0, fakeValence{compound: tt.compound})
			v := e.Analyze("some text", MethodVader)
			assert.Equal(t, tt.want, v.Sentiment)
			assert.Equal(t, MethodVader, v.Method)
			require.NotNil(t, v.Vader)
			assert.Nil(t, v.Polarity)
		})
	}
}

func TestEngine_CombinedWeights(t *testing.T) {
	tests := []struct {
		name     string
		polarity float64
		compound float64
		want     Label
	}{
		{name: "both positive", polarity: 0.5, compound: 0.5, want: Positive},
		{name: "disagreement leans on valence", polarity: -0.3, compound: 0.6, want: Positive},
		{name: "at combined threshold", polarity: 0, compound: 0.25, want: Neutral},
		{name: "below negative threshold", polarity: -0.3, compound: -0.1, want: Negative},
		{name: "neutral mix", polarity: 0.1, compound: 0.05, want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEngine(t, tt.polarity, 0.5, fakeValence{compound: tt.compound})
			v := e.Analyze("some text", MethodCombined)

			assert.InDelta(t, 0.4*tt.polarity+0.6*tt.compound, v.Score, 0.0005)
			assert.Equal(t, tt.want, v.Sentiment)
			assert.Equal(t, MethodCombined, v.Method)
			require.NotNil(t, v.Polarity)
			require.NotNil(t, v.Vader)
			assert.InDelta(t, 0.4*v.Polarity.Confidence+0.6*v.Vader.Confidence, v.Confidence, 0.001)
		})
	}
}

func TestEngine_FallsBackWithoutValenceScorer(t *testing.T) {
	e := newFakeEngine(t, 0.5, 0.5, nil)
	assert.False(t, e.ValenceAvailable())

	for _, m := range []Method{MethodVader, MethodCombined} {
		v := e.Analyze("some text", m)
		assert.Equal(t, MethodPolarity, v.Method, "method %s", m)
		assert.Equal(t, Positive, v.Sentiment)
		assert.NotNil(t, v.Polarity)
		assert.Nil(t, v.Vader)
	}
}

func TestEngine_PolarityConfidence(t *testing.T) {
	e := newFakeEngine(t, -0.6, 0.7, nil)
	v := e.Analyze("x", MethodPolarity)
	assert.InDelta(t, 0.81, v.Confidence, 1e-9)

	e = newFakeEngine(t, 0.9, 1, nil)
	v = e.Analyze("x", MethodPolarity)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	require.NotNil(t, v.Polarity.Subjectivity)
	assert.InDelta(t, 1.0, *v.Polarity.Subjectivity, 1e-9)
}

func TestEngine_ResolvesMethod(t *testing.T) {
	e := newFakeEngine(t, 0.1, 0.5, fakeValence{compound: 0.9})

	tests := []struct {
		name      string
		method    Method
		want      Method
		wantLabel Label
		wantScore float64
	}{
		{name: "empty selects combined", method: "", want: MethodCombined, wantLabel: Positive, wantScore: 0.58},
		{name: "combined", method: MethodCombined, want: MethodCombined, wantLabel: Positive, wantScore: 0.58},
		{name: "textblob alias", method: "textblob", want: MethodPolarity, wantLabel: Neutral, wantScore: 0.1},
		{name: "vader", method: MethodVader, want: MethodVader, wantLabel: Positive, wantScore: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Analyze("ok", tt.method)
			require.False(t, v.Failed())
			assert.Equal(t, tt.want, v.Method)
			assert.Equal(t, tt.wantLabel, v.Sentiment)
			assert.InDelta(t, tt.wantScore, v.Score, 0.0005)
		})
	}
}

func TestEngine_UnknownMethodIsDegraded(t *testing.T) {
	e := newFakeEngine(t, 0.9, 0.9, fakeValence{compound: 0.9})

	v := e.Analyze("great product", Method("bert"))
	assert.True(t, v.Failed())
	assert.ErrorIs(t, v.Err(), ErrUnknownMethod)
	assert.Contains(t, v.Error, `"bert"`)
	assert.Equal(t, Neutral, v.Sentiment)
	assert.Zero(t, v.Score)
	assert.Nil(t, v.Polarity)
	assert.Nil(t, v.Vader)
}

func TestEngine_DegradedInputs(t *testing.T) {
	e := newFakeEngine(t, 0.9, 0.9, fakeValence{compound: 0.9})

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "whitespace", input: " \n\t ", wantErr: ErrEmptyInput},
		{name: "invalid utf8", input: "\xff\xfe", wantErr: ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Analyze(tt.input, MethodCombined)
			assert.True(t, v.Failed())
			assert.ErrorIs(t, v.Err(), tt.wantErr)
			assert.Equal(t, tt.wantErr.Error(), v.Error)
			assert.Equal(t, Neutral, v.Sentiment)
			assert.Zero(t, v.Score)
			assert.Zero(t, v.Confidence)
			assert.Nil(t, v.Polarity)
			assert.Nil(t, v.Vader)
		})
	}
}

func TestEngine_RecoversFromScorerPanic(t *testing.T) {
	e, err := NewEngine(panickingPolarity{})
	require.NoError(t, err)

	var v Verdict
	assert.NotPanics(t, func() {
		v = e.Analyze("hello there", MethodCombined)
	})
	assert.True(t, v.Failed())
	assert.ErrorIs(t, v.Err(), ErrInternalScoring)
	assert.Contains(t, v.Error, "lexicon exploded")
	assert.Equal(t, Neutral, v.Sentiment)
}

func TestEngine_DeterministicAndConcurrent(t *testing.T) {
	e, err := NewDefaultEngine(DefaultConfig(), true)
	require.NoError(t, err)

	const text = "Great support, my issue was resolved quickly!"
	want := e.Analyze(text, MethodCombined)

	var wg sync.WaitGroup
	results := make([]Verdict, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Analyze(text, MethodCombined)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEngine_Examples(t *testing.T) {
	e, err := NewDefaultEngine(DefaultConfig(), true)
	require.NoError(t, err)
	require.True(t, e.ValenceAvailable())

	t.Run("crash report is negative", func(t *testing.T) {
		v := e.Analyze("The app is crashing frequently after update.", MethodCombined)
		require.False(t, v.Failed())
		assert.Equal(t, Negative, v.Sentiment)
		assert.Less(t, v.Score, -0.15)
		assert.Equal(t, MethodCombined, v.Method)
	})

	t.Run("praise is positive", func(t *testing.T) {
		v := e.Analyze("Great support, my issue was resolved quickly!", MethodCombined)
		require.False(t, v.Failed())
		assert.Equal(t, Positive, v.Sentiment)
		assert.Greater(t, v.Score, 0.15)
		require.NotNil(t, v.Polarity)
		assert.Equal(t, Positive, v.Polarity.Sentiment)
	})

	t.Run("vader alone", func(t *testing.T) {
		v := e.Analyze("This is terrible and I hate it", MethodVader)
		assert.Equal(t, Negative, v.Sentiment)
		require.NotNil(t, v.Vader)
		require.NotNil(t, v.Vader.Proportions)
	})
}

func TestVerdict_JSONRestoresError(t *testing.T) {
	e := newFakeEngine(t, 0, 0, nil)
	v := e.Analyze("   ", MethodCombined)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded Verdict
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, errors.Is(decoded.Err(), ErrEmptyInput))
	assert.Equal(t, Neutral, decoded.Sentiment)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "", want: MethodCombined},
		{in: "combined", want: MethodCombined},
		{in: "polarity", want: MethodPolarity},
		{in: "textblob", want: MethodPolarity},
		{in: "vader", want: MethodVader},
		{in: "bert", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownMethod)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
