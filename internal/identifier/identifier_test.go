package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "plain_ascii",
			raw:      "alice_42",
			expected: "alice_42",
		},
		{
			name:     "punctuation_stripped",
			raw:      "a!l@i#c$e",
			expected: "alice",
		},
		{
			name:     "accented_letters_stripped",
			raw:      "álice!!",
			expected: "lice",
		},
		{
			name:     "cjk_preserved",
			raw:      "学习者01",
			expected: "学习者01",
		},
		{
			name:     "mixed_cjk_and_junk",
			raw:      "用户/../etc",
			expected: "用户etc",
		},
		{
			name:     "spaces_and_path_separators",
			raw:      "../a b/c",
			expected: "abc",
		},
		{
			name:     "all_punctuation_gives_empty",
			raw:      "!!!...///",
			expected: "",
		},
		{
			name:     "empty_input",
			raw:      "",
			expected: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Sanitize(testCase.raw))
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, raw := range []string{
		"álice!!",
		"学习者01",
		"a b c",
		"!!!",
		"plain",
	} {
		once := Sanitize(raw)
		assert.Equal(t, once, Sanitize(once), "sanitize should be idempotent for %q", raw)
	}
}
