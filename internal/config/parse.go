// internal/config/parse.go
//
// Primitive parsers for raw environment values.
//
// Context
// -------
// Every parser takes an optional raw string plus a default and never fails.
// Missing or empty input yields the default.  Malformed integers also yield
// the default; see DESIGN.md for why that asymmetry is kept.
//
// Notes
// -----
//   • ParseSet performs no enumeration checks.  ValidateWorkers does that.
//   • Oxford commas, two spaces after periods.

package config

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseBool returns def for empty input and true only for the literal
// "true".  "TRUE", "1", and "yes" are all false.
func ParseBool(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	return raw == "true"
}

// ParseInt parses an unsigned run of decimal digits, falling back to def
// when raw is empty, signed, or not a number.
func ParseInt(raw string, def int) int {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ParsePort is ParseInt with the extra rule that zero means "unset".
func ParsePort(raw string, def int) int {
	if n := ParseInt(raw, 0); n != 0 {
		return n
	}
	return def
}

// ParseSet strips every whitespace rune, splits on commas, and drops empty
// tokens.  An empty result is replaced by a copy of def.
func ParseSet(raw string, def []string) []string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var out []string
	for _, tok := range strings.Split(compact, ",") {
		if tok != "" {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}

// ParseList splits on commas, trims each entry, and drops empties.  Unlike
// ParseSet it keeps inner whitespace and has no default.
func ParseList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
