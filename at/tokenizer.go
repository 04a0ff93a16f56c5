package at

import (
	"bufio"
	"bytes"
	"strings"
)

var (
	crlf   = []byte(CRLF)
	prompt = []byte(Prompt)
)

// Splitter cuts a framed modem response into lines. It has the signature of
// bufio.SplitFunc and yields one token per CRLF terminated line, plus a
// separate token for the SMS input prompt, which is not line terminated.
// Empty lines are kept so callers can tell an echoed command from a bare
// response. Whatever remains at EOF is returned as the last token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	switch {
	case atEOF && len(data) == 0:
		return 0, nil, nil
	case bytes.HasPrefix(data, prompt):
		return len(prompt), data[:len(prompt)], nil
	}

	if end := bytes.Index(data, crlf); end >= 0 {
		return end + len(crlf), data[:end], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	// Need more input.
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

var (
	finalResults = map[string]struct{}{
		OK: {}, ERROR: {}, NoCarrier: {}, NoDialtone: {}, Busy: {}, NoAnswer: {},
	}
	finalPrefixes = []string{CmeError, CmsError}
	urcPrefixes   = []string{UrcNewMsg, UrcMessageReport, UrcCallerID, UrcExtendedRing}
)

// Classify tells final result codes, unsolicited notifications, the SMS
// prompt and intermediate data lines apart.
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}
	if _, ok := finalResults[line]; ok {
		return TypeFinal
	}
	if hasAnyPrefix(line, finalPrefixes) {
		return TypeFinal
	}
	if line == UrcCall || hasAnyPrefix(line, urcPrefixes) {
		return TypeURC
	}
	return TypeData
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Contains reports whether token occurs anywhere in a framed response. The
// test is case-sensitive and unanchored, so an echoed command line matches
// its own text; callers choose tokens that cannot appear in the echo.
func Contains(response []byte, token string) bool {
	return bytes.Contains(response, []byte(token))
}

// Lines tokenizes a complete framed response with Splitter and returns the
// non-empty tokens in order.
func Lines(response []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(response))
	scanner.Split(Splitter)

	var lines []string
	for scanner.Scan() {
		if token := scanner.Text(); token != "" {
			lines = append(lines, token)
		}
	}
	return lines
}

// Quoted returns the text between the first two double quotes of s.
func Quoted(s string) (string, bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return s[start+1 : start+1+end], true
}
