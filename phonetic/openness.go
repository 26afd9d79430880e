package phonetic

import "strings"

// Openness scores how wide the mouth is expected to be while producing a
// phoneme, in [0, 1]. Vowels bias toward open, stops and silence toward
// closed; the text-alignment refiner uses these as expectation weights.
var opennessByPhone = map[string]float64{
	// Vowels: fully open.
	"AA": 1.0, "AE": 1.0, "AH": 0.9, "AO": 1.0, "AW": 1.0, "AY": 1.0,
	"EH": 0.9, "ER": 0.8, "EY": 0.9, "IH": 0.8, "IY": 0.8, "OW": 0.9,
	"OY": 0.9, "UH": 0.8, "UW": 0.8,
	// Glides and liquids: partially open.
	"W": 0.6, "Y": 0.6, "R": 0.6, "L": 0.6,
	// Nasals: mostly closed.
	"M": 0.1, "N": 0.3, "NG": 0.3,
	// Fricatives and affricates: slightly open.
	"F": 0.2, "V": 0.2, "S": 0.25, "Z": 0.25, "SH": 0.3, "ZH": 0.3,
	"TH": 0.25, "DH": 0.25, "HH": 0.4, "CH": 0.2, "JH": 0.2,
	// Stops: closed.
	"P": 0.05, "B": 0.05, "T": 0.1, "D": 0.1, "K": 0.15, "G": 0.15,
}

// Openness returns the expected mouth openness for an ARPABET phoneme,
// with or without a stress digit. Unknown phonemes score neutral.
func Openness(phone string) float64 {
	if v, ok := opennessByPhone[strings.TrimRight(phone, "012")]; ok {
		return v
	}
	return 0.5
}

// IsVowel reports whether an ARPABET phoneme is a vowel.
func IsVowel(phone string) bool {
	return isVowelPhone(strings.TrimRight(phone, "012"))
}

var vowelPhones = map[string]struct{}{
	"AA": {}, "AE": {}, "AH": {}, "AO": {}, "AW": {}, "AY": {},
	"EH": {}, "ER": {}, "EY": {}, "IH": {}, "IY": {}, "OW": {},
	"OY": {}, "UH": {}, "UW": {},
}

func isVowelPhone(phone string) bool {
	_, ok := vowelPhones[phone]
	return ok
}
