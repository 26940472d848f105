package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrStationEmpty is returned when the station id is empty or whitespace-only after trim.
var ErrStationEmpty = errors.New("station id is required")

// ErrStationTooLong is returned when the station id exceeds MaxStationIDLength.
var ErrStationTooLong = errors.New("station id too long")

// ErrStationInvalidChars is returned when the station id contains characters
// that cannot appear in a citypage file name.
var ErrStationInvalidChars = errors.New("station id contains invalid characters")

var ErrUnknownProvince = errors.New("unknown province")

var ErrUnknownLanguage = errors.New("unknown language")

// MaxStationIDLength bounds station ids; published ids are 8 characters (s0000635).
const MaxStationIDLength = 32

// Provinces lists the region directories published on the citypage datamart.
// HEF is the directory for stations outside any province.
var Provinces = []string{"AB", "BC", "HEF", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT"}

// languages maps a language name to the letter used in citypage file names.
var languages = map[string]string{
	"english": "e",
	"french":  "f",
}

// ValidateStationID trims the input and restricts it to letters, digits,
// hyphen and underscore so it can be used as a path segment.
func ValidateStationID(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrStationEmpty
	}
	if len(r) > MaxStationIDLength {
		return "", ErrStationTooLong
	}
	for _, c := range r {
		if !isAllowedStationRune(c) {
			return "", fmt.Errorf("%w: %q", ErrStationInvalidChars, s)
		}
	}
	return s, nil
}

func isAllowedStationRune(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return r == '-' || r == '_'
}

// ValidateProvince returns the upper-case region code for a case-insensitive input.
func ValidateProvince(input string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(input))
	for _, known := range Provinces {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownProvince, input, strings.ToLower(strings.Join(Provinces, ", ")))
}

// LanguageCode returns the file-name letter ("e" or "f") for english or french.
func LanguageCode(input string) (string, error) {
	code, ok := languages[strings.ToLower(strings.TrimSpace(input))]
	if !ok {
		return "", fmt.Errorf("%w %q (want english or french)", ErrUnknownLanguage, input)
	}
	return code, nil
}
