// Package phonetic provides pronunciation lookup with homophone and rhyme
// matching. Words absent from the dictionary fall back to rule-based
// grapheme-to-phoneme inference, so out-of-vocabulary input degrades to an
// approximate match rather than an error.
package phonetic

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

//go:embed data/lexicon.txt
var embeddedLexicon []byte

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the process-wide lexicon built from the embedded
// baseline dictionary. Initialization is lazy, idempotent and safe for
// concurrent first use; the result is read-only thereafter.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Load(bytes.NewReader(embeddedLexicon))
		if err != nil {
			// The embedded dictionary is compiled in; a parse failure is a
			// build defect, not a runtime condition.
			panic(fmt.Sprintf("phonetic: embedded lexicon: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// Lexicon maps words to ARPABET pronunciations and maintains the inverted
// indexes used for homophone and rhyme lookup. It is immutable after Load.
type Lexicon struct {
	prons      map[string][][]string // word -> pronunciation variants, stress markers kept
	byDestress map[string][]string   // destressed pronunciation key -> words
	byRhyme    map[string][]string   // destressed rhyme suffix key -> words
}

// Load parses a CMU-format dictionary: "WORD  PH PH PH", with "(n)"
// suffixes marking alternative pronunciations and ";;;" comments.
func Load(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{
		prons:      make(map[string][][]string),
		byDestress: make(map[string][]string),
		byRhyme:    make(map[string][]string),
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("phonetic: line %d: expected word and phonemes", lineNum)
		}

		word := strings.ToLower(fields[0])
		if idx := strings.IndexByte(word, '('); idx > 0 {
			word = word[:idx] // variant marker
		}
		phones := fields[1:]

		lex.add(word, phones)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("phonetic: read dictionary: %w", err)
	}
	return lex, nil
}

func (l *Lexicon) add(word string, phones []string) {
	l.prons[word] = append(l.prons[word], phones)

	dKey := strings.Join(destress(phones), " ")
	if !containsWord(l.byDestress[dKey], word) {
		l.byDestress[dKey] = append(l.byDestress[dKey], word)
	}

	if rKey := rhymeKey(phones); rKey != "" {
		if !containsWord(l.byRhyme[rKey], word) {
			l.byRhyme[rKey] = append(l.byRhyme[rKey], word)
		}
	}
}

// Pronunciations returns the dictionary pronunciations for a word, or nil
// if the word is out of vocabulary. Lookup is case-insensitive.
func (l *Lexicon) Pronunciations(word string) [][]string {
	return l.prons[strings.ToLower(strings.TrimSpace(word))]
}

// PronunciationsOrInfer returns dictionary pronunciations when available,
// otherwise a single rule-based grapheme-to-phoneme approximation.
func (l *Lexicon) PronunciationsOrInfer(word string) [][]string {
	if prons := l.Pronunciations(word); len(prons) > 0 {
		return prons
	}
	inferred := InferPhonemes(word)
	if len(inferred) == 0 {
		return nil
	}
	return [][]string{inferred}
}

// Words returns the number of distinct words in the lexicon.
func (l *Lexicon) Words() int { return len(l.prons) }

// destress strips stress digits: "EH1" -> "EH".
func destress(phones []string) []string {
	out := make([]string, len(phones))
	for i, p := range phones {
		out[i] = strings.TrimRight(p, "012")
	}
	return out
}

// rhymeKey returns the destressed suffix from the final stressed vowel
// onward, the comparison basis for a strict rhyme. Falls back to the last
// vowel for stress-free (inferred) pronunciations; returns "" when the
// pronunciation has no vowel at all.
func rhymeKey(phones []string) string {
	idx := -1
	for i := len(phones) - 1; i >= 0; i-- {
		if strings.HasSuffix(phones[i], "1") || strings.HasSuffix(phones[i], "2") {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i := len(phones) - 1; i >= 0; i-- {
			if isVowelPhone(strings.TrimRight(phones[i], "012")) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return ""
	}
	return strings.Join(destress(phones[idx:]), " ")
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
