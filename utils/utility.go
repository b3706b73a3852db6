package utils

import (
	"strconv"
	"strings"
	"time"
)

// AutocompleteIDPrefix marks autocomplete values that carry a resolved user
// id instead of a raw username.
const AutocompleteIDPrefix = "::"

// LimitString truncates s after limit characters, appending "..." when
// anything was cut.
func LimitString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// EscapeBackticks sanitizes free text that gets interpolated into
// backtick-fenced Discord markup.
func EscapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

// ExtractAutocompleteID parses a "::<id>" autocomplete value. ok is false
// for plain username input.
func ExtractAutocompleteID(value string) (int64, bool) {
	raw, found := strings.CutPrefix(value, AutocompleteIDPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// DaysAgo returns the moment the given number of days before now. Zero or
// negative days return the current time.
func DaysAgo(days int) time.Time {
	if days <= 0 {
		return time.Now()
	}
	return time.Now().AddDate(0, 0, -days)
}
