package service

import (
	"strings"
	"unicode"
)

// 摘要截断上限（字符数），超出部分在词边界截断并追加省略号
const excerptMaxLength = 160

// GenerateSlug 把标题或名称转换为 URL 安全的 slug：
// 全部小写，连续的非字母数字字符折叠为单个连字符，去掉首尾连字符。
func GenerateSlug(value string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pending = false
		} else {
			pending = true
		}
	}
	return b.String()
}

// GenerateExcerpt 从 Markdown 正文生成摘要：剥掉常见标记符号，
// 超过 160 字符时回退到上一个词边界截断并追加 "..."。
func GenerateExcerpt(content string) string {
	plain := strings.TrimSpace(strings.Map(dropMarkdownPunct, content))
	runes := []rune(plain)
	if len(runes) <= excerptMaxLength {
		return plain
	}

	cut := string(runes[:excerptMaxLength])
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}

func dropMarkdownPunct(r rune) rune {
	switch r {
	case '#', '*', '`', '[', ']', '(', ')':
		return -1
	}
	return r
}
