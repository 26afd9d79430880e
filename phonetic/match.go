package phonetic

import (
	"sort"
	"strings"
)

// maxVariantCombos caps the cartesian explosion when building the
// pronunciation of a multi-word phrase from per-word variants.
const maxVariantCombos = 16

// Homophones returns words and two-word phrases that share a destressed
// pronunciation with the query. The query itself never appears in the
// result. Out-of-vocabulary queries go through grapheme-to-phoneme
// inference first.
func (l *Lexicon) Homophones(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}

	found := make(map[string]struct{})
	for _, variant := range l.PronunciationsOrInfer(word) {
		phones := destress(variant)

		for _, w := range l.byDestress[strings.Join(phones, " ")] {
			if w != word {
				found[w] = struct{}{}
			}
		}

		// A single word can match a multi-word phrase with the same phoneme
		// sequence ("lettuce" / "let us"): try every two-word split.
		for i := 1; i < len(phones); i++ {
			left := l.byDestress[strings.Join(phones[:i], " ")]
			right := l.byDestress[strings.Join(phones[i:], " ")]
			for _, w1 := range left {
				for _, w2 := range right {
					phrase := w1 + " " + w2
					if phrase != word {
						found[phrase] = struct{}{}
					}
				}
			}
		}
	}
	return sortedKeys(found)
}

// Rhymes returns dictionary words whose phoneme suffix from the final
// stressed vowel onward matches the query's (strict rhyme). The query is
// excluded; a word with no rhyming dictionary entries yields an empty
// result, not an error.
func (l *Lexicon) Rhymes(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}

	found := make(map[string]struct{})
	for _, variant := range l.PronunciationsOrInfer(word) {
		key := rhymeKey(variant)
		if key == "" {
			continue
		}
		for _, w := range l.byRhyme[key] {
			if w != word {
				found[w] = struct{}{}
			}
		}
	}
	return sortedKeys(found)
}

// Matches returns homophones and rhymes for a word or a multi-word phrase.
// For a phrase, the homophones are matched against the concatenated
// pronunciation (so "let us" finds "lettuce") and the rhymes come from the
// final word.
func (l *Lexicon) Matches(wordOrPhrase string) (homophones, rhymes []string) {
	query := strings.ToLower(strings.TrimSpace(wordOrPhrase))
	words := strings.Fields(query)

	switch len(words) {
	case 0:
		return []string{}, []string{}
	case 1:
		return l.Homophones(words[0]), l.Rhymes(words[0])
	}

	found := make(map[string]struct{})
	for _, phones := range l.phrasePronunciations(words) {
		for _, w := range l.byDestress[strings.Join(destress(phones), " ")] {
			if w != query {
				found[w] = struct{}{}
			}
		}
	}
	return sortedKeys(found), l.Rhymes(words[len(words)-1])
}

// phrasePronunciations builds candidate pronunciations for a phrase by
// concatenating per-word variants, capped to keep pathological inputs
// cheap.
func (l *Lexicon) phrasePronunciations(words []string) [][]string {
	combos := [][]string{{}}
	for _, w := range words {
		variants := l.PronunciationsOrInfer(w)
		if len(variants) == 0 {
			return nil
		}
		var next [][]string
		for _, prefix := range combos {
			for _, v := range variants {
				combined := make([]string, 0, len(prefix)+len(v))
				combined = append(combined, prefix...)
				combined = append(combined, v...)
				next = append(next, combined)
				if len(next) >= maxVariantCombos {
					break
				}
			}
			if len(next) >= maxVariantCombos {
				break
			}
		}
		combos = next
	}
	return combos
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
