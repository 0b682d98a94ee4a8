package chat

import (
	"regexp"
	"strings"
)

// namePatterns are tried in order; the first match wins. Each pattern
// captures a single capitalized word token after a self-identification
// phrase. Matching is case-insensitive end to end, so the capture accepts
// any letter casing.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is ([A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)I am ([A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)I'm ([A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)call me ([A-Z][a-z]+)`),
}

// ExtractUserInfo scans a user message for self-identification phrases and
// returns the context map with any discovered facts merged in. It is a pure
// function: the input map is never mutated, and when nothing matches the
// returned map has identical content.
//
// Only the "name" fact is recognized today; the design is extensible by
// adding patterns, not by general NLP.
func ExtractUserInfo(message string, currentContext map[string]string) map[string]string {
	updatedContext := make(map[string]string, len(currentContext)+1)
	for key, value := range currentContext {
		updatedContext[key] = value
	}

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[1])
		if len(name) > 1 {
			updatedContext["name"] = name
			break
		}
	}

	return updatedContext
}
