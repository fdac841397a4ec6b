package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestReplyRows(t *testing.T) {
	got := ReplyRows(
		[]Button{{Text: "Send location", Location: true}},
		[]Button{{Text: "Back"}},
	)
	want := [][]tele.ReplyButton{
		{{Text: "Send location", Location: true}},
		{{Text: "Back"}},
	}
	assert.True(t, got.ResizeKeyboard)
	assert.Equal(t, want, got.ReplyKeyboard)
}

func TestInlineButtonsKeepRawData(t *testing.T) {
	got := InlineButtonsRows(
		[]InlineBtn{{Text: "☆", Data: "1tAAAA0"}, {Text: "Open", URL: "https://example.org"}},
		nil,
	)
	want := [][]tele.InlineButton{{
		{Text: "☆", Data: "1tAAAA0"},
		{Text: "Open", URL: "https://example.org"},
	}}
	assert.Equal(t, want, got.InlineKeyboard)
}

