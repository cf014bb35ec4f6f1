package sentiment

import "strings"

// maxKeywords caps the number of keywords returned for one text.
const maxKeywords = 5

var positiveKeywords = []string{
	"great", "excellent", "amazing", "love", "perfect", "awesome", "fantastic",
	"good", "happy", "satisfied", "resolved", "quick", "helpful",
}

var negativeKeywords = []string{
	"terrible", "awful", "hate", "worst", "horrible", "bad", "broken",
	"crash", "error", "problem", "issue", "bug", "slow", "frustrated",
}

// ExtractKeywords returns up to five vocabulary terms for label that occur in text
// as case-insensitive substrings, in vocabulary order. Neutral text has none.
func ExtractKeywords(text string, label Label) []string {
	var vocabulary []string
	switch label {
	case Positive:
		vocabulary = positiveKeywords
	case Negative:
		vocabulary = negativeKeywords
	default:
		return []string{}
	}

	lower := strings.ToLower(text)
	found := make([]string, 0, maxKeywords)
	for _, kw := range vocabulary {
		if !strings.Contains(lower, kw) {
			continue
		}
		found = append(found, kw)
		if len(found) == maxKeywords {
			break
		}
	}
	return found
}
