package chatinfra

import (
	"regexp"
	"strings"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
)

// Each message is persisted as a small tagged record:
//
//	{"type":"user|assistant|system|unknown","content":"escaped text"}
//
// escapeText and unescapeText are exact inverses for any input content.

var (
	typePattern    = regexp.MustCompile(`"type"\s*:\s*"(user|assistant|system|unknown)"`)
	contentPattern = regexp.MustCompile(`"content"\s*:\s*"((?:\\.|[^"\\])*)"`)
)

// encodeMessage serializes a message to its persisted record.
func encodeMessage(msg llm.Message) string {
	recordType := "unknown"
	switch msg.Role {
	case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		recordType = msg.Role
	}
	return `{"type":"` + recordType + `","content":"` + escapeText(msg.Content) + `"}`
}

// decodeMessage parses a persisted record. Records with an unknown type or a
// shape that does not match are dropped rather than failing the load.
func decodeMessage(record string) (llm.Message, bool) {
	typeMatch := typePattern.FindStringSubmatch(record)
	contentMatch := contentPattern.FindStringSubmatch(record)
	if typeMatch == nil || contentMatch == nil {
		return llm.Message{}, false
	}

	content := unescapeText(contentMatch[1])

	switch typeMatch[1] {
	case "user":
		return llm.NewUserMessage(content), true
	case "assistant":
		return llm.NewAssistantMessage(content), true
	case "system":
		return llm.NewSystemMessage(content), true
	default:
		return llm.Message{}, false
	}
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

// escapeText escapes backslash, quote, newline, carriage return and tab.
func escapeText(text string) string {
	return escaper.Replace(text)
}

// unescapeText is the exact inverse of escapeText. A single left-to-right
// scan avoids the double-unescaping a chain of replacements would cause.
func unescapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 == len(text) {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(text[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
