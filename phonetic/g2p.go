package phonetic

import "strings"

// Rule-based grapheme-to-phoneme fallback for out-of-vocabulary words.
// The output is an approximate, stress-free ARPABET sequence, good enough
// for destressed homophone comparison and rhyme-suffix matching.

var digraphPhones = map[string][]string{
	"th": {"TH"},
	"ch": {"CH"},
	"sh": {"SH"},
	"ph": {"F"},
	"wh": {"W"},
	"ck": {"K"},
	"ng": {"NG"},
	"qu": {"K", "W"},
	"ee": {"IY"},
	"ea": {"IY"},
	"oo": {"UW"},
	"ou": {"AW"},
	"ow": {"AW"},
	"ai": {"EY"},
	"ay": {"EY"},
	"oa": {"OW"},
	"oy": {"OY"},
	"oi": {"OY"},
	"au": {"AO"},
	"aw": {"AO"},
}

var letterPhones = map[byte][]string{
	'a': {"AE"}, 'e': {"EH"}, 'i': {"IH"}, 'o': {"AA"}, 'u': {"AH"},
	'b': {"B"}, 'd': {"D"}, 'f': {"F"}, 'g': {"G"}, 'h': {"HH"},
	'j': {"JH"}, 'k': {"K"}, 'l': {"L"}, 'm': {"M"}, 'n': {"N"},
	'p': {"P"}, 'r': {"R"}, 's': {"S"}, 't': {"T"}, 'v': {"V"},
	'w': {"W"}, 'y': {"Y"}, 'z': {"Z"},
	'c': {"K"}, 'q': {"K"}, 'x': {"K", "S"},
}

// InferPhonemes approximates a pronunciation for a word not found in the
// dictionary. Non-letter characters are skipped; an empty or non-alphabetic
// input yields nil.
func InferPhonemes(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}

	var phones []string
	chars := []byte(word)
	for i := 0; i < len(chars); i++ {
		ch := chars[i]
		if ch < 'a' || ch > 'z' {
			continue
		}

		if i+1 < len(chars) {
			if ph, ok := digraphPhones[string(chars[i:i+2])]; ok {
				phones = append(phones, ph...)
				i++
				continue
			}
		}

		// Soft c/g before front vowels.
		if i+1 < len(chars) && isFrontVowelLetter(chars[i+1]) {
			switch ch {
			case 'c':
				phones = append(phones, "S")
				continue
			case 'g':
				phones = append(phones, "JH")
				continue
			}
		}

		// Trailing silent e, unless it is the only vowel.
		if ch == 'e' && i == len(chars)-1 && hasEarlierVowel(chars[:i]) {
			continue
		}

		if ph, ok := letterPhones[ch]; ok {
			phones = append(phones, ph...)
		}
	}
	return phones
}

func isFrontVowelLetter(ch byte) bool {
	return ch == 'e' || ch == 'i' || ch == 'y'
}

func hasEarlierVowel(chars []byte) bool {
	for _, ch := range chars {
		switch ch {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			return true
		}
	}
	return false
}
