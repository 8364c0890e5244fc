package service

import (
	"strings"
	"testing"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"two words with mixed case", "Tech Notes", "tech-notes"},
		{"punctuation collapses to single hyphen", "Go 1.22, what's new?", "go-1-22-what-s-new"},
		{"leading and trailing separators stripped", "  --Hello--  ", "hello"},
		{"digits preserved", "Top 10 Tools", "top-10-tools"},
		{"only punctuation yields empty slug", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateSlug(tc.input); got != tc.want {
				t.Fatalf("GenerateSlug(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestGenerateExcerptShortContentUnchanged(t *testing.T) {
	got := GenerateExcerpt("# Title\nA *short* paragraph.")
	if strings.ContainsAny(got, "#*`[]()") {
		t.Fatalf("excerpt still contains markdown punctuation: %q", got)
	}
	if strings.HasSuffix(got, "...") {
		t.Fatalf("short excerpt should not be truncated: %q", got)
	}
}

func TestGenerateExcerptTruncatesAtWordBoundary(t *testing.T) {
	content := strings.Repeat("wordly ", 100)
	got := GenerateExcerpt(content)

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long excerpt should end with ellipsis: %q", got)
	}
	trimmed := strings.TrimSuffix(got, "...")
	if len([]rune(trimmed)) > 160 {
		t.Fatalf("excerpt body exceeds 160 characters: %d", len([]rune(trimmed)))
	}
	// 词边界截断：去掉省略号后不应以半截单词结尾
	for _, word := range strings.Fields(trimmed) {
		if word != "wordly" {
			t.Fatalf("excerpt split a word in half: %q", word)
		}
	}
}

func TestGenerateExcerptStripsMarkdownPunctuation(t *testing.T) {
	got := GenerateExcerpt("# Heading with [link](https://example.com) and `code`")
	if strings.ContainsAny(got, "#*`[]()") {
		t.Fatalf("excerpt still contains markdown punctuation: %q", got)
	}
	if !strings.Contains(got, "link") || !strings.Contains(got, "code") {
		t.Fatalf("excerpt dropped visible text: %q", got)
	}
}
