package conv

import (
	"strings"
	"testing"
)

func TestMarkdownToMatrixHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "plain text",
			input:    "Hello world",
			contains: "Hello world",
		},
		{
			name:     "bold text",
			input:    "**bold**",
			contains: "<strong>bold</strong>",
		},
		{
			name:     "italic text",
			input:    "*italic*",
			contains: "<em>italic</em>",
		},
		{
			name:     "inline code",
			input:    "`code`",
			contains: "<code>code</code>",
		},
		{
			name:     "link",
			input:    "[page](https://example.com)",
			contains: `<a href="https://example.com">page</a>`,
		},
		{
			name:     "headers kept",
			input:    "# Usage",
			contains: "<h1",
		},
		{
			name:     "blockquote",
			input:    "> quoted",
			contains: "<blockquote>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToMatrixHTML([]byte(tt.input))
			if !strings.Contains(got, tt.contains) {
				t.Errorf("MarkdownToMatrixHTML(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
		})
	}
}

func TestMarkdownToMatrixHTMLSanitizesScripts(t *testing.T) {
	got := MarkdownToMatrixHTML([]byte("<script>alert('xss')</script>"))
	if strings.Contains(got, "<script>") {
		t.Errorf("script tag survived sanitization: %q", got)
	}
}
