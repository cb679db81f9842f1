// Package sentiment provides a deterministic, offline lexicon scorer for
// financial headlines. Polarity is in [-1, 1]; Score renormalizes it to [0, 1]
// with 0.5 as neutral.
package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceed": 0.5, "beats estimate": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "accumulate": 0.5,
	"gain": 0.4, "soar": 0.7, "jump": 0.5, "rise": 0.3, "optimism": 0.5,
	"approval": 0.4, "partnership": 0.3, "record": 0.3,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "sell-off": 0.7, "fall": 0.4, "correction": 0.5,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
	"drop": 0.4, "tumble": 0.6, "lawsuit": 0.5, "bankruptcy": 0.8,
	"layoff": 0.5, "recession": 0.6, "hack": 0.6, "fear": 0.5,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"isn't": true, "wasn't": true, "don't": true, "doesn't": true,
	"didn't": true, "won't": true, "can't": true, "fails": true,
}

// negationScope is how many tokens back a negator still applies.
const negationScope = 3

// lexicon holds signed weights: bullish > 0, bearish < 0.
var (
	lexicon   = map[string]float64{}
	maxPhrase = 1
)

func init() {
	for w, v := range bullishWords {
		addTerm(w, v)
	}
	for w, v := range bearishWords {
		addTerm(w, -v)
	}
}

func addTerm(term string, weight float64) {
	lexicon[term] = weight
	if n := len(strings.Fields(term)); n > maxPhrase {
		maxPhrase = n
	}
}

type match struct {
	weight  float64
	negated bool
}

// scan walks the tokens left to right, preferring the longest phrase at each
// position. Matching never depends on map iteration order.
func scan(text string) []match {
	tokens := tokenize(text)
	var out []match
	for i := 0; i < len(tokens); {
		n, w, ok := lookup(tokens, i)
		if !ok {
			i++
			continue
		}
		out = append(out, match{weight: w, negated: negatedAt(tokens, i)})
		i += n
	}
	return out
}

func lookup(tokens []string, i int) (n int, weight float64, ok bool) {
	for n = maxPhrase; n >= 1; n-- {
		if i+n > len(tokens) {
			continue
		}
		phrase := strings.Join(tokens[i:i+n], " ")
		if w, found := lexicon[phrase]; found {
			return n, w, true
		}
		if n == 1 {
			if w, found := lexicon[stem(phrase)]; found {
				return 1, w, true
			}
		}
	}
	return 0, 0, false
}

func negatedAt(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationScope; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

// stem strips common English inflections.
func stem(word string) string {
	for _, suffix := range []string{"ing", "es", "ed", "s", "d"} {
		if len(word) > len(suffix)+2 && strings.HasSuffix(word, suffix) {
			base := strings.TrimSuffix(word, suffix)
			if _, ok := lexicon[base]; ok {
				return base
			}
		}
	}
	return word
}

// Polarity returns the lexicon polarity of text in [-1, 1].
// Negated terms flip sign; no matches yields 0.
func Polarity(text string) float64 {
	var bull, bear float64
	for _, m := range scan(text) {
		w := m.weight
		if m.negated {
			w = -w
		}
		if w > 0 {
			bull += w
		} else {
			bear -= w
		}
	}
	total := bull + bear
	if total == 0 {
		return 0
	}
	return clamp((bull-bear)/math.Max(total, 1), -1, 1)
}

// Normalize maps a polarity in [-1, 1] onto [0, 1].
func Normalize(polarity float64) float64 {
	return clamp((polarity+1)/2, 0, 1)
}

// Score is the normalized sentiment of text; 0.5 is neutral.
func Score(text string) float64 {
	return Normalize(Polarity(text))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
