// Package nlp turns free symptom text into canonical symptom keys using
// multilingual keyword tables and a multinomial Naive Bayes classifier.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	wordPrefix  = "w:"
	gramPrefix  = "g:"
	gramSize    = 4
	minWordSize = 2
)

// ParseLocale converts a BCP 47 style tag ("en", "hi-IN", "ta_IN") into a
// language tag. Unknown or empty tags resolve to language.Und.
func ParseLocale(locale string) language.Tag {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return language.Und
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// lowerLocale lowercases text with the case rules of the given locale.
// A Caser carries state, so a new one is built per call.
func lowerLocale(text, locale string) string {
	return cases.Lower(ParseLocale(locale)).String(text)
}

// NormalizeText lowercases text, replaces every rune that is neither a letter
// nor a number with a space and collapses whitespace.
func NormalizeText(text, locale string) string {
	lowered := lowerLocale(text, locale)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(cleaned), " ")
}

// ExtractFeatures produces the ordered feature list used by the classifier:
// "w:<token>" for tokens of at least two runes and "g:<4-gram>" for every
// contiguous four-rune window of tokens at least four runes long.
func ExtractFeatures(text, locale string) []string {
	normalized := NormalizeText(text, locale)
	if normalized == "" {
		return []string{}
	}

	features := make([]string, 0, len(normalized))
	for _, token := range strings.Split(normalized, " ") {
		runes := []rune(token)
		if len(runes) >= minWordSize {
			features = append(features, wordPrefix+token)
		}
		if len(runes) >= gramSize {
			for i := 0; i+gramSize <= len(runes); i++ {
				features = append(features, gramPrefix+string(runes[i:i+gramSize]))
			}
		}
	}
	return features
}
