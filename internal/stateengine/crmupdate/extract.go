// Package crmupdate turns a candidate's free-text reply into approved CRM
// field mutations. Extraction is deterministic pattern matching against the
// values that were actually offered; anything ambiguous is skipped with an
// explicit reason, never guessed.
package crmupdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"examdesk_backend/internal/stateengine/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases and strips diacritics so that "Décembre", "decembre" and
// "DÉCEMBRE" all compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Session vocabulary, matched whole-word on folded text. "journee" must not
// count as "jour" and vice versa, hence the word boundaries.
var (
	dayWordsRe     = regexp.MustCompile(`\b(jour|journee|matin|apres[- ]midi|day)\b`)
	eveningWordsRe = regexp.MustCompile(`\b(soir|soiree|evening)\b`)
)

// countSessionWords returns the number of day-session and evening-session
// vocabulary hits in the message.
func countSessionWords(message string) (day, evening int) {
	folded := Fold(message)
	return len(dayWordsRe.FindAllString(folded, -1)), len(eveningWordsRe.FindAllString(folded, -1))
}

// Date notations accepted in candidate messages.
var (
	frenchNumericRe = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	isoRe           = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	spelledRe       = regexp.MustCompile(`\b(\d{1,2})(?:er)?\s+(janvier|fevrier|mars|avril|mai|juin|juillet|aout|septembre|octobre|novembre|decembre)\s+(\d{4})\b`)
)

var frenchMonths = map[string]int{
	"janvier": 1, "fevrier": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "aout": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "decembre": 12,
}

// ExtractDates finds every date mentioned in the message in any of the
// three accepted notations, normalized to ISO form and deduplicated in
// order of appearance. Impossible dates (31/02/...) are dropped.
func ExtractDates(message string) []string {
	folded := Fold(message)

	var found []string
	for _, m := range frenchNumericRe.FindAllStringSubmatch(folded, -1) {
		found = appendDate(found, m[3], m[2], m[1])
	}
	for _, m := range isoRe.FindAllStringSubmatch(folded, -1) {
		found = appendDate(found, m[1], m[2], m[3])
	}
	for _, m := range spelledRe.FindAllStringSubmatch(folded, -1) {
		month := frenchMonths[m[2]]
		found = appendDate(found, m[3], strconv.Itoa(month), m[1])
	}
	return found
}

func appendDate(acc []string, year, month, day string) []string {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return acc
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	if !domain.ParseDate(iso).Known {
		return acc
	}
	for _, existing := range acc {
		if existing == iso {
			return acc
		}
	}
	return append(acc, iso)
}
