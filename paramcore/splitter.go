package paramcore

import "strings"

// SplitSmart splits a tag interior on comma, single "|", or double "||",
// whichever separator the interior actually uses, while respecting nested
// "<...>" brackets.
//
// The separator is chosen by a first pass over the string at bracket depth
// 0: "||" wins if present, else "|", else ",". A second pass then splits on
// that separator at depth 0 and trims each part.
func SplitSmart(s string) []string {
	sep := chooseSeparator(s)
	return splitAtDepthZero(s, sep)
}

func chooseSeparator(s string) string {
	depth := 0
	hasDoublePipe := false
	hasSinglePipe := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				if i+1 < len(runes) && runes[i+1] == '|' {
					hasDoublePipe = true
					i++
				} else {
					hasSinglePipe = true
				}
			}
		}
	}
	switch {
	case hasDoublePipe:
		return "||"
	case hasSinglePipe:
		return "|"
	default:
		return ","
	}
}

func splitAtDepthZero(s, sep string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	runes := []rune(s)
	sepRunes := []rune(sep)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '<':
			depth++
			current.WriteRune(runes[i])
		case '>':
			if depth > 0 {
				depth--
			}
			current.WriteRune(runes[i])
		default:
			if depth == 0 && matchesAt(runes, i, sepRunes) {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
				i += len(sepRunes) - 1
			} else {
				current.WriteRune(runes[i])
			}
		}
	}
	parts = append(parts, strings.TrimSpace(current.String()))
	return parts
}

func matchesAt(runes []rune, i int, sep []rune) bool {
	if i+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// SplitSmartNonEmpty is SplitSmart with empty pieces removed, used by
// callers such as the "seq" tag handler that need non-empty parts only.
func SplitSmartNonEmpty(s string) []string {
	parts := SplitSmart(s)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
