package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		state map[string]any
		want  string
	}{
		{"no markers", "plain <b>text</b>", nil, "plain <b>text</b>"},
		{"value", "Q: {{.question}}", map[string]any{"question": "a < b"}, "Q: a < b"},
		{"default", "{{default \"n/a\" .missing}}", map[string]any{}, "n/a"},
		{"upper", "{{upper .s}}", map[string]any{"s": "abc"}, "ABC"},
		{"trim", "[{{trim .s}}]", map[string]any{"s": "  x  "}, "[x]"},
		{"truncate", "{{truncate 3 .s}}", map[string]any{"s": "abcdef"}, "abc..."},
		{"join", "{{join \", \" .items}}", map[string]any{"items": []string{"a", "b"}}, "a, b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.text, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTemplate_Error(t *testing.T) {
	_, err := ParseTemplate("broken", "{{.unterminated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestTemplate_RenderRepeatedly(t *testing.T) {
	tmpl, err := ParseTemplate("greet", "hi {{.name}}")
	require.NoError(t, err)

	for _, name := range []string{"ann", "bo"} {
		got, err := tmpl.Render(map[string]any{"name": name})
		require.NoError(t, err)
		assert.Equal(t, "hi "+name, got)
	}
}
