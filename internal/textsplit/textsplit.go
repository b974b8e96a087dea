// Package textsplit breaks long documents into sentence-aligned pieces small
// enough to send as individual embed texts.
package textsplit

import (
	"strings"
	"unicode"
)

// DefaultMaxWords bounds the size of a piece when no limit is given.
const DefaultMaxWords = 256

// Splitter packs whole sentences into pieces of at most MaxWords words.
// A single sentence longer than MaxWords is cut on word boundaries.
type Splitter struct {
	MaxWords int
}

// New returns a Splitter; maxWords <= 0 selects DefaultMaxWords.
func New(maxWords int) *Splitter {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &Splitter{MaxWords: maxWords}
}

// Split returns the pieces of text in order. Blank input yields nil.
func (s *Splitter) Split(text string) []string {
	var (
		pieces  []string
		current []string
		words   int
	)

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			words = 0
		}
	}

	for _, sentence := range Sentences(text) {
		fields := strings.Fields(sentence)
		n := len(fields)

		if n > s.MaxWords {
			flush()
			for start := 0; start < n; start += s.MaxWords {
				end := min(start+s.MaxWords, n)
				pieces = append(pieces, strings.Join(fields[start:end], " "))
			}
			continue
		}

		if words+n > s.MaxWords {
			flush()
		}
		current = append(current, strings.Join(fields, " "))
		words += n
	}
	flush()

	return pieces
}

// Sentences splits text after '.', '!' or '?' when followed by whitespace or
// the end of input. Common abbreviations do not end a sentence.
func Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		sentences []string
		current   strings.Builder
	)

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(current.String())
		if sentence != "" && !endsWithAbbreviation(sentence) {
			sentences = append(sentences, sentence)
			current.Reset()
		}
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

var abbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.",
	"inc.", "ltd.", "corp.",
	"etc.", "e.g.", "i.e.",
	"vs.", "no.", "vol.",
}

func endsWithAbbreviation(s string) bool {
	lower := strings.ToLower(s)
	for _, abbr := range abbreviations {
		if !strings.HasSuffix(lower, abbr) {
			continue
		}
		// Only a whole word counts: "casino." is not "no.".
		prefix := lower[:len(lower)-len(abbr)]
		if prefix == "" || unicode.IsSpace(rune(prefix[len(prefix)-1])) {
			return true
		}
	}
	return false
}
