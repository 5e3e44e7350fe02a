// Package identity normalizes student names and derives the name_regno
// identifiers shared by the encoding store, the dataset directories and
// the registry.
package identity

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a full name does not have exactly three
// whitespace-separated parts after normalization.
var ErrInvalidName = errors.New("full name must contain exactly 3 parts")

// ErrEmptyRegNo is returned when the registration number is blank.
var ErrEmptyRegNo = errors.New("registration number is required")

// removeDiacritics strips diacritical marks (e.g., "Kraïem" -> "Kraiem").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName lowercases, strips diacritics and joins the name parts
// with single spaces.
func NormalizeName(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}

// ValidateName normalizes the name and checks the three-part rule.
func ValidateName(name string) (string, error) {
	normalized := NormalizeName(name)
	if len(strings.Fields(normalized)) != 3 {
		return "", ErrInvalidName
	}
	return normalized, nil
}

// FolderName derives the name_regno identifier from a normalized name and
// registration number.
func FolderName(normalizedName, regNo string) string {
	name := strings.ReplaceAll(normalizedName, " ", "_")
	return name + "_" + strings.ToLower(strings.TrimSpace(regNo))
}

// Split recovers the full name and registration number from an
// identifier. The registration number is everything after the last
// underscore.
func Split(identifier string) (fullName, regNo string) {
	i := strings.LastIndex(identifier, "_")
	if i < 0 {
		return identifier, ""
	}
	return strings.ReplaceAll(identifier[:i], "_", " "), identifier[i+1:]
}

// Title uppercases the first letter of each name part for display.
func Title(fullName string) string {
	parts := strings.Fields(fullName)
	for i, p := range parts {
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
