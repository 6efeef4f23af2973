// Package normalize canonicalizes free-text fields before comparison:
// beneficiary names, bank statement descriptions, and boleto digit lines.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
	nonDigitRegex        = regexp.MustCompile(`[^0-9]`)

	// stripMarks decomposes to NFD and removes combining marks, turning
	// "Diagnósticos São" into "Diagnosticos Sao".
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
)

// Text canonicalizes free text for comparison: diacritics stripped,
// uppercased, punctuation collapsed to single spaces.
func Text(s string) string {
	result, _, err := transform.String(stripMarks, s)
	if err != nil {
		result = s
	}
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Compact is Text with spaces removed, suitable for substring containment
// checks against statement descriptions.
func Compact(s string) string {
	return strings.ReplaceAll(Text(s), " ", "")
}

// DigitLine keeps only the digits of a boleto digit line or barcode. Bank
// descriptions embed the number with dots, spaces and separators; the digit
// sequence is the comparable identity.
func DigitLine(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// Anchor returns the first n runes of a compact string. Partial beneficiary
// names are matched by anchor so "LAB DIAGNOSTICA SAO PAULO LTDA" still hits
// a truncated statement description.
func Anchor(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
