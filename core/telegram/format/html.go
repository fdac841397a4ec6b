package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b> tags.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Field renders "label: value" with an escaped value, or "" when value is blank.
func Field(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + EscapeHTML(value)
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
