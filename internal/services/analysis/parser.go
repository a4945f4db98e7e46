package analysis

import (
	"encoding/json"
	"strings"
	"unicode"

	"polyalpha/internal/domain/analysis"
)

const fence = "```"

// ParseResponse recovers an analysis result from raw model text.
// It never fails: when the text is not a JSON object the fixed
// analysis.UnparsedResult is returned with ok == false.
func ParseResponse(content string) (result analysis.Result, ok bool) {
	cleaned := StripCodeFence(content)

	if cleaned == "null" {
		return analysis.UnparsedResult(), false
	}

	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return analysis.UnparsedResult(), false
	}

	result.ApplyDefaults()
	return result, true
}

// StripCodeFence removes a surrounding markdown code fence, with or without
// a language tag. Text that does not start with a fence is only trimmed.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = s[len(fence):]

	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if isLanguageTag(s[:nl]) {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimLeftFunc(s, isTagRune)
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isLanguageTag(line string) bool {
	line = strings.TrimSpace(line)
	for _, r := range line {
		if !isTagRune(r) {
			return false
		}
	}
	return true
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}
