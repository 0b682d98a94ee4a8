package chat

import (
	"sort"
	"strings"
)

// DefaultSystemPrompt is the base persona for plain chat.
const DefaultSystemPrompt = "You are Melodic, a helpful, creative, and musically-inclined AI assistant. You have a cheerful, friendly personality and occasionally incorporate musical references into your responses. Keep responses concise and use emojis where appropriate, especially music-related ones."

// DefaultSearchSystemPrompt is the base persona for web-search-augmented chat.
const DefaultSearchSystemPrompt = "You are Melodic, a helpful, creative, and musically-inclined AI assistant with real-time web search capabilities. You have a cheerful, friendly personality and occasionally incorporate musical references into your responses. When searching for information online, cite your sources with numbered links at the end of your response. Format your responses with multiple paragraphs for better readability. Use markdown formatting like **bold**, *italic*, and bullet points where appropriate. Use emojis where appropriate, especially music-related ones."

// contextUsageInstruction is appended after injected facts so the model
// knows what to do with them.
const contextUsageInstruction = "Use this information to personalize your responses when appropriate."

// BuildSystemPrompt appends one sentence per known fact to the base persona
// prompt. Facts are emitted in sorted key order so the result is
// deterministic for a given context map.
func BuildSystemPrompt(base string, userContext map[string]string) string {
	if len(userContext) == 0 {
		return base
	}

	keys := make([]string, 0, len(userContext))
	for key := range userContext {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(base)
	for _, key := range keys {
		b.WriteString(" The user's ")
		b.WriteString(key)
		b.WriteString(" is ")
		b.WriteString(userContext[key])
		b.WriteString(".")
	}
	b.WriteString(" ")
	b.WriteString(contextUsageInstruction)
	return b.String()
}
