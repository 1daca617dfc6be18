package wire

import (
	"strconv"
	"strings"
)

// Encode renders a command name and its parameters as a single HackVR
// frame: TAB-joined fields terminated by CRLF. Each parameter has bare CR
// and CRLF normalized to LF before joining, matching the wire rule that
// frames are themselves CRLF-delimited and must not carry a stray CR or
// embedded CRLF that would confuse the line boundary.
func Encode(name string, params ...string) (string, error) {
	if !isValidName(name) {
		return "", &InvalidFrameError{Reason: "invalid command name " + strconv.Quote(name)}
	}
	normalized := make([]string, 0, len(params)+1)
	normalized = append(normalized, name)
	for _, p := range params {
		np := normalizeNewlines(p)
		if !isValidParam(np) {
			return "", &InvalidFrameError{Reason: "invalid parameter " + strconv.Quote(p)}
		}
		normalized = append(normalized, np)
	}
	frame := strings.Join(normalized, "\t") + "\r\n"
	if len(frame) > MaxLineLength {
		return "", &LineTooLongError{Length: len(frame)}
	}
	return frame, nil
}

// normalizeNewlines converts CRLF and bare CR sequences to LF, mirroring
// the reference encoder's per-parameter newline canonicalization.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

func isValidName(name string) bool {
	return name != "" && !containsControl(name) && !strings.ContainsAny(name, "\t")
}

// isValidParam rejects a stray tab (the field delimiter) and any Cc
// control character other than LF, which a param may legitimately carry.
func isValidParam(param string) bool {
	return !strings.Contains(param, "\t") && !containsForbiddenControl(param)
}
