package wire

import (
	"strconv"
	"strings"
)

// Selectors address objects by a dash-joined sequence of segments, e.g.
// "root-player-head". A pattern enriches that grammar with "*" (match any
// number of whole segments), "?" (match exactly one segment), "{a,b,c}"
// (alternation), and "{m..n}" (a zero-padded numeric range, width taken
// from whichever bound has more digits when either carries a leading
// zero).

// IsValidToken reports whether s is a valid plain selector segment: one or
// more of letters, digits, or underscore.
func IsValidToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// IsValidPattern reports whether pattern is well-formed: every dash-joined
// part is either a plain token, "*", "?", a brace group "{a,b,...}", or a
// numeric range "{m..n}".
func IsValidPattern(pattern string) bool {
	parts, err := splitPattern(pattern)
	if err != nil {
		return false
	}
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if !isValidPart(part) {
			return false
		}
	}
	return true
}

// splitPattern splits on '-' but not inside a brace group, mirroring the
// reference tokenizer's brace-depth tracking.
func splitPattern(pattern string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	depth := 0
	for _, r := range pattern {
		switch r {
		case '{':
			depth++
			cur.WriteRune(r)
		case '}':
			depth--
			if depth < 0 {
				return nil, newParseError("pattern", pattern, "unbalanced }")
			}
			cur.WriteRune(r)
		case '-':
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, newParseError("pattern", pattern, "unbalanced {")
	}
	parts = append(parts, cur.String())
	return parts, nil
}

func isValidPart(part string) bool {
	switch {
	case part == "*", part == "?":
		return true
	case isGroup(part):
		return isValidGroup(part)
	default:
		return IsValidToken(part)
	}
}

func isGroup(part string) bool {
	return len(part) >= 2 && part[0] == '{' && part[len(part)-1] == '}'
}

func isValidGroup(part string) bool {
	inner := part[1 : len(part)-1]
	if isValidRange(inner) {
		return true
	}
	if inner == "" {
		return false
	}
	for _, item := range strings.Split(inner, ",") {
		if !IsValidToken(item) {
			return false
		}
	}
	return true
}

func isValidRange(inner string) bool {
	idx := strings.Index(inner, "..")
	if idx == -1 {
		return false
	}
	lo, hi := inner[:idx], inner[idx+2:]
	if lo == "" || hi == "" {
		return false
	}
	if _, err := strconv.Atoi(lo); err != nil {
		return false
	}
	if _, err := strconv.Atoi(hi); err != nil {
		return false
	}
	return true
}

// GetUpperExpansionLimit estimates the number of concrete selectors a
// pattern could match against a scope of matchAllCount candidates, used
// by callers to reject patterns that would be too expensive before
// attempting a full Expand or Select. Unlike Expand, a wildcard doesn't
// make this unbounded: "*" and "?" each stand for at most matchAllCount
// possibilities, the size of whatever scope Select would run the pattern
// against.
func GetUpperExpansionLimit(pattern string, matchAllCount int) (int, error) {
	if !IsValidPattern(pattern) {
		return 0, newParseError("pattern", pattern, "invalid pattern")
	}
	parts, _ := splitPattern(pattern)
	count := 1
	for _, part := range parts {
		switch {
		case part == "*", part == "?":
			count *= matchAllCount
		case isGroup(part):
			count *= groupSize(part)
		}
	}
	return count, nil
}

func groupSize(part string) int {
	inner := part[1 : len(part)-1]
	if isValidRange(inner) {
		idx := strings.Index(inner, "..")
		lo, _ := strconv.Atoi(inner[:idx])
		hi, _ := strconv.Atoi(inner[idx+2:])
		if hi < lo {
			return 0
		}
		return hi - lo + 1
	}
	return len(strings.Split(inner, ","))
}

// Expand enumerates every concrete selector matched by pattern. Callers
// should bound cost with GetUpperExpansionLimit first; Expand itself does
// not impose a limit.
func Expand(pattern string) ([]string, error) {
	if !IsValidPattern(pattern) {
		return nil, newParseError("pattern", pattern, "invalid pattern")
	}
	parts, _ := splitPattern(pattern)
	results := []string{""}
	for _, part := range parts {
		options, err := expandPart(part)
		if err != nil {
			return nil, err
		}
		var next []string
		for _, prefix := range results {
			for _, opt := range options {
				if prefix == "" {
					next = append(next, opt)
				} else {
					next = append(next, prefix+"-"+opt)
				}
			}
		}
		results = next
	}
	return results, nil
}

func expandPart(part string) ([]string, error) {
	switch {
	case part == "*":
		return nil, newParseError("pattern", part, "wildcard * cannot be expanded")
	case part == "?":
		return nil, newParseError("pattern", part, "wildcard ? cannot be expanded")
	case isGroup(part):
		return expandGroup(part)
	default:
		return []string{part}, nil
	}
}

func expandGroup(part string) ([]string, error) {
	inner := part[1 : len(part)-1]
	if isValidRange(inner) {
		return expandRange(inner)
	}
	return strings.Split(inner, ","), nil
}

func expandRange(inner string) ([]string, error) {
	idx := strings.Index(inner, "..")
	loStr, hiStr := inner[:idx], inner[idx+2:]
	lo, _ := strconv.Atoi(loStr)
	hi, _ := strconv.Atoi(hiStr)
	width := 0
	if hasLeadingZero(loStr) || hasLeadingZero(hiStr) {
		width = maxInt(len(loStr), len(hiStr))
	}
	var out []string
	for n := lo; n <= hi; n++ {
		out = append(out, padInt(n, width))
	}
	return out, nil
}

func hasLeadingZero(s string) bool {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	return len(s) > 1 && s[0] == '0'
}

func padInt(n, width int) string {
	s := strconv.Itoa(n)
	if width == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	digits := s
	if neg {
		digits = s[1:]
	}
	for len(digits) < width {
		digits = "0" + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Matches reports whether selector (a plain, pattern-free dash-joined
// token sequence) is matched by pattern, honoring "*" as a multi-segment
// wildcard and "?" as a single-segment wildcard via two-pointer matching
// with backtracking, the same approach as typical shell glob matching.
func Matches(pattern, selector string) (bool, error) {
	if !IsValidPattern(pattern) {
		return false, newParseError("pattern", pattern, "invalid pattern")
	}
	if !isValidSelector(selector) {
		return false, newParseError("selector", selector, "invalid selector")
	}
	patParts, _ := splitPattern(pattern)
	selParts := strings.Split(selector, "-")
	return matches(patParts, selParts), nil
}

// Select filters scope down to the items whose key matches pattern,
// deduping by token and preserving scope's original order. A bare "*"
// short-circuits to the whole scope without per-item matching, matching
// the reference's own fast path for the everything-selector.
func Select[T any](pattern string, scope []T, key func(T) string) ([]T, error) {
	if pattern == "*" {
		return scope, nil
	}
	patterns, err := expandPatternAlternatives(pattern)
	if err != nil {
		return nil, err
	}
	parsedPatterns := make([][]string, len(patterns))
	for i, p := range patterns {
		parsedPatterns[i], _ = splitPattern(p)
	}

	var result []T
	seen := make(map[string]bool)
	for _, item := range scope {
		token := key(item)
		if seen[token] {
			continue
		}
		tokenParts := strings.Split(token, "-")
		for _, patParts := range parsedPatterns {
			if matches(patParts, tokenParts) {
				result = append(result, item)
				seen[token] = true
				break
			}
		}
	}
	return result, nil
}

// expandPatternAlternatives expands every brace group in pattern into
// its concrete alternatives while leaving "*"/"?" in place, producing
// the set of wildcard-bearing patterns Select matches a token against.
// This differs from Expand, which refuses to run at all when the
// pattern carries a wildcard.
func expandPatternAlternatives(pattern string) ([]string, error) {
	if !IsValidPattern(pattern) {
		return nil, newParseError("pattern", pattern, "invalid pattern")
	}
	parts, _ := splitPattern(pattern)
	options := make([][]string, 0, len(parts))
	for _, part := range parts {
		var opts []string
		switch {
		case part == "*", part == "?":
			opts = []string{part}
		case isGroup(part):
			var err error
			opts, err = expandGroup(part)
			if err != nil {
				return nil, err
			}
		default:
			opts = []string{part}
		}
		options = append(options, opts)
	}
	combos := []string{""}
	for _, opts := range options {
		var next []string
		for _, prefix := range combos {
			for _, opt := range opts {
				if prefix == "" {
					next = append(next, opt)
				} else {
					next = append(next, prefix+"-"+opt)
				}
			}
		}
		combos = next
	}
	return combos, nil
}

func isValidSelector(selector string) bool {
	for _, part := range strings.Split(selector, "-") {
		if !IsValidToken(part) {
			return false
		}
	}
	return true
}

func matches(pat, sel []string) bool {
	pi, si := 0, 0
	starIdx, matchIdx := -1, -1
	for si < len(sel) {
		if pi < len(pat) && matchesPart(pat[pi], sel[si]) {
			pi++
			si++
		} else if pi < len(pat) && pat[pi] == "*" {
			starIdx = pi
			matchIdx = si
			pi++
		} else if starIdx != -1 {
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		} else {
			return false
		}
	}
	for pi < len(pat) && pat[pi] == "*" {
		pi++
	}
	return pi == len(pat)
}

func matchesPart(patPart, selPart string) bool {
	switch {
	case patPart == "?":
		return true
	case isGroup(patPart):
		opts, err := expandGroup(patPart)
		if err != nil {
			return false
		}
		for _, o := range opts {
			if o == selPart {
				return true
			}
		}
		return false
	default:
		return patPart == selPart
	}
}
