// Package translate detects the language of ticket text and translates
// non-English text to English before it is scored.
package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is assumed whenever detection fails.
const DefaultLanguage = "en"

var (
	ErrLanguageUnknown = errors.New("language could not be detected")
	ErrLowConfidence   = errors.New("language detection confidence too low")
)

// Detection is the outcome of language detection. Language is always set; Err
// records why it fell back to DefaultLanguage.
type Detection struct {
	Language   string
	Confidence float64
	Err        error
}

type Detector interface {
	Detect(text string) Detection
}

// WhatlangDetector detects languages with whatlanggo's trigram models.
type WhatlangDetector struct {
	minConfidence float64
}

func NewDetector(minConfidence float64) *WhatlangDetector {
	return &WhatlangDetector{minConfidence: minConfidence}
}

func (d *WhatlangDetector) Detect(text string) Detection {
	if strings.TrimSpace(text) == "" {
		return Detection{Language: DefaultLanguage, Err: ErrLanguageUnknown}
	}

	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return Detection{Language: DefaultLanguage, Err: ErrLanguageUnknown}
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return Detection{
			Language:   DefaultLanguage,
			Confidence: info.Confidence,
			Err:        fmt.Errorf("%w: no ISO 639-1 code for %s", ErrLanguageUnknown, info.Lang.String()),
		}
	}

	if info.Confidence < d.minConfidence {
		return Detection{
			Language:   DefaultLanguage,
			Confidence: info.Confidence,
			Err:        fmt.Errorf("%w: %s at %.2f", ErrLowConfidence, code, info.Confidence),
		}
	}

	return Detection{Language: code, Confidence: info.Confidence}
}
