package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed data/polarity.tsv
var polarityLexiconTSV string

// LexiconEntry is one scored word of a polarity lexicon.
type LexiconEntry struct {
	Polarity     float64
	Subjectivity float64
	Intensity    float64
}

// IsModifier reports whether the entry only scales the next scored word.
func (e LexiconEntry) IsModifier() bool {
	return e.Polarity == 0 && e.Intensity != 1
}

// Lexicon maps words to polarity entries. A Lexicon is immutable once parsed.
type Lexicon struct {
	entries map[string]LexiconEntry
}

// Lookup returns the entry for word.
func (l *Lexicon) Lookup(word string) (LexiconEntry, bool) {
	e, ok := l.entries[word]
	return e, ok
}

// Len returns the number of entries.
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// ParseLexicon reads tab-separated "word polarity subjectivity intensity" lines.
// Blank lines and lines starting with '#' are skipped. Unlike the best-effort
// parsing of runtime data, a malformed line is an error: a broken lexicon must
// stop the process at startup.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	entries := make(map[string]LexiconEntry, 256)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("lexicon line %d: expected 4 fields, got %d", lineNo, len(fields))
		}

		var values [3]float64
		for i, raw := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("lexicon line %d: %w", lineNo, err)
			}
			values[i] = v
		}

		entry := LexiconEntry{Polarity: values[0], Subjectivity: values[1], Intensity: values[2]}
		if entry.Polarity < -1 || entry.Polarity > 1 {
			return nil, fmt.Errorf("lexicon line %d: polarity %v out of range", lineNo, entry.Polarity)
		}
		if entry.Subjectivity < 0 || entry.Subjectivity > 1 {
			return nil, fmt.Errorf("lexicon line %d: subjectivity %v out of range", lineNo, entry.Subjectivity)
		}
		if entry.Intensity <= 0 {
			return nil, fmt.Errorf("lexicon line %d: intensity must be positive", lineNo)
		}

		entries[strings.ToLower(strings.TrimSpace(fields[0]))] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("lexicon is empty")
	}

	return &Lexicon{entries: entries}, nil
}

// DefaultLexicon parses the embedded polarity lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(strings.NewReader(polarityLexiconTSV))
}
