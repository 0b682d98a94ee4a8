package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractUserInfo(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		current  map[string]string
		expected map[string]string
	}{
		{
			name:     "my name is",
			message:  "My name is Alice",
			current:  map[string]string{},
			expected: map[string]string{"name": "Alice"},
		},
		{
			name:     "i am",
			message:  "Hello, I am Bob",
			current:  map[string]string{},
			expected: map[string]string{"name": "Bob"},
		},
		{
			name:     "contraction",
			message:  "I'm Carol by the way",
			current:  map[string]string{},
			expected: map[string]string{"name": "Carol"},
		},
		{
			name:     "call me",
			message:  "please call me Dave",
			current:  map[string]string{},
			expected: map[string]string{"name": "Dave"},
		},
		{
			name:     "case insensitive phrase",
			message:  "MY NAME IS Erin",
			current:  map[string]string{},
			expected: map[string]string{"name": "Erin"},
		},
		{
			name:     "no match leaves context unchanged",
			message:  "hello there",
			current:  map[string]string{"name": "Alice"},
			expected: map[string]string{"name": "Alice"},
		},
		{
			name:     "new introduction overwrites",
			message:  "I'm Bob and I like jazz",
			current:  map[string]string{"name": "Alice"},
			expected: map[string]string{"name": "Bob"},
		},
		{
			name:     "first pattern wins",
			message:  "My name is Alice but call me Ally",
			current:  map[string]string{},
			expected: map[string]string{"name": "Alice"},
		},
		{
			name:     "single letter capture rejected",
			message:  "I am X",
			current:  map[string]string{},
			expected: map[string]string{},
		},
		{
			name:     "nil current context",
			message:  "My name is Alice",
			current:  nil,
			expected: map[string]string{"name": "Alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractUserInfo(tt.message, tt.current)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractUserInfoDoesNotMutateInput(t *testing.T) {
	current := map[string]string{"name": "Alice"}
	got := ExtractUserInfo("I'm Bob", current)

	require.Equal(t, map[string]string{"name": "Bob"}, got)
	require.Equal(t, map[string]string{"name": "Alice"}, current)
}

func TestBuildSystemPrompt(t *testing.T) {
	require.Equal(t, DefaultSystemPrompt, BuildSystemPrompt(DefaultSystemPrompt, nil))
	require.Equal(t, DefaultSystemPrompt, BuildSystemPrompt(DefaultSystemPrompt, map[string]string{}))

	got := BuildSystemPrompt("Base.", map[string]string{"name": "Alice"})
	require.Equal(t, "Base. The user's name is Alice. Use this information to personalize your responses when appropriate.", got)
}

func TestBuildSystemPromptSortedFacts(t *testing.T) {
	facts := map[string]string{"name": "Alice", "instrument": "cello"}
	first := BuildSystemPrompt("Base.", facts)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, BuildSystemPrompt("Base.", facts))
	}
	require.Equal(t, "Base. The user's instrument is cello. The user's name is Alice. Use this information to personalize your responses when appropriate.", first)
}
