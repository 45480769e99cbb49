package rank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/jobfinder/internal/model"
)

// normalizeText strips accents and lowercases.
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(strings.Join(strings.Fields(result), " "))
}

// jobText is the descriptive text a job is compared on.
func jobText(j model.JobRecord) string {
	return strings.Join([]string{j.Title, j.Company, j.Location, j.Experience, j.JobNature, j.Salary}, " ")
}

// tokens splits normalized text on anything that is not a letter, digit, '+' or '#'
// so "c++" and "c#" survive.
func tokens(s string) []string {
	return strings.FieldsFunc(normalizeText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
