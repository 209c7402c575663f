// Package dateutil resolves footer date values such as "auto" and
// "auto:DD/MM/YYYY" against a reference time.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength limits format string length.
const MaxFormatLength = 50

// DefaultFormat is used when "auto" is given without a format.
const DefaultFormat = "YYYY-MM-DD"

const autoKeyword = "auto"

// tokenReplacer maps format tokens to Go layout components. At a given
// position the earliest listed token wins, so longer tokens come first.
var tokenReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"MMMM", "January",
	"MMM", "Jan",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"M", "1",
	"D", "2",
)

// Presets are named shortcuts for common formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD, D) into a
// Go time layout. Text inside brackets is kept literally: "[Week of] D".
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		open := strings.IndexByte(rest, '[')
		// No more literals
		if open < 0 {
			b.WriteString(tokenReplacer.Replace(rest))
			break
		}
		b.WriteString(tokenReplacer.Replace(rest[:open]))

		// Bracketed text is copied verbatim, without the brackets
		closing := strings.IndexByte(rest[open+1:], ']')
		if closing < 0 {
			return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest)+open)
		}
		b.WriteString(rest[open+1 : open+1+closing])
		rest = rest[open+closing+2:]
	}
	return b.String(), nil
}

// Resolve expands "auto", "auto:FORMAT" and "auto:PRESET" using now.
// Any other value is returned unchanged.
func Resolve(value string, now time.Time) (string, error) {
	// Case-insensitive "auto" prefix; anything else is a literal date
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, autoKeyword) {
		return value, nil
	}

	format := DefaultFormat
	if lower != autoKeyword {
		custom, ok := strings.CutPrefix(value[len(autoKeyword):], ":")
		if !ok {
			return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		if custom == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		format = custom
		// Preset names win over token formats
		if preset, ok := Presets[strings.ToLower(custom)]; ok {
			format = preset
		}
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
