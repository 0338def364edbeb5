package session

import (
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/tubeanalyst/core"
)

const truncationMarker = "..."

// tail returns the last n messages (all of them when n exceeds the length).
// The result aliases msgs; callers copy before handing it out.
func tail(msgs []core.Message, n int) []core.Message {
	if n <= 0 {
		return nil
	}
	if n >= len(msgs) {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// formatContext renders messages oldest-first as question/answer line pairs.
func formatContext(msgs []core.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Previous question: ")
		b.WriteString(m.UserText)
		b.WriteString("\nPrevious answer: ")
		b.WriteString(truncate(m.ResponseText, ResponsePreviewLimit))
	}
	return b.String()
}

// truncate cuts s to limit runes and appends the truncation marker when
// anything was cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + truncationMarker
}
