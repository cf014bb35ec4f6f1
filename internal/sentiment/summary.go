package sentiment

// Distribution counts verdicts per label.
type Distribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Percentages are per-label shares of a batch, each rounded to one decimal on its
// own. They are not adjusted to sum to exactly 100.
type Percentages struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Summary aggregates a batch of verdicts.
type Summary struct {
	Total        int          `json:"total"`
	Distribution Distribution `json:"distribution"`
	Percentages  *Percentages `json:"percentages,omitempty"`
	AverageScore float64      `json:"average_score"`
}

// Item is one entry of a batch: either an already computed verdict or a raw
// message that still needs analysis.
type Item struct {
	Message string
	Verdict *Verdict
}

// Summarize aggregates verdicts. An empty batch yields a zero summary without
// percentages.
func Summarize(verdicts []Verdict) Summary {
	if len(verdicts) == 0 {
		return Summary{}
	}

	var (
		dist Distribution
		sum  float64
	)
	for _, v := range verdicts {
		switch v.Sentiment {
		case Positive:
			dist.Positive++
		case Negative:
			dist.Negative++
		default:
			dist.Neutral++
		}
		sum += v.Score
	}

	total := float64(len(verdicts))
	return Summary{
		Total:        len(verdicts),
		Distribution: dist,
		Percentages: &Percentages{
			Positive: round(float64(dist.Positive)/total*100, 1),
			Neutral:  round(float64(dist.Neutral)/total*100, 1),
			Negative: round(float64(dist.Negative)/total*100, 1),
		},
		AverageScore: round(sum/total, 3),
	}
}

// SummarizeItems aggregates a batch, analyzing with MethodCombined every item that
// has no verdict yet. A degraded analysis counts as a neutral zero score.
func (e *Engine) SummarizeItems(items []Item) Summary {
	verdicts := make([]Verdict, 0, len(items))
	for _, item := range items {
		if item.Verdict != nil {
			verdicts = append(verdicts, *item.Verdict)
			continue
		}
		verdicts = append(verdicts, e.Analyze(item.Message, MethodCombined))
	}
	return Summarize(verdicts)
}
