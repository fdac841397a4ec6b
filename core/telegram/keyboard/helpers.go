package keyboard

import tele "gopkg.in/telebot.v4"

// Button describes a reply keyboard button.
type Button struct {
	Text string
	// Location turns the button into a location request.
	Location bool
}

// InlineBtn describes an inline button that either opens URL or carries Data
// back to the bot as raw callback_data.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	out := make([][]Button, len(rows))
	for i, row := range rows {
		out[i] = make([]Button, len(row))
		for j, label := range row {
			out[i][j] = Button{Text: label}
		}
	}
	return ReplyRows(out...)
}

// ReplyRows builds a resized reply keyboard from rows of Button.
func ReplyRows(rows ...[]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.ReplyKeyboard = make([][]tele.ReplyButton, len(rows))
	for i, row := range rows {
		r := make([]tele.ReplyButton, len(row))
		for j, b := range row {
			r[j] = tele.ReplyButton{Text: b.Text, Location: b.Location}
		}
		markup.ReplyKeyboard[i] = r
	}
	return markup
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Data is passed through unchanged so that callers control the callback_data bytes.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, b := range row {
			r[j] = tele.InlineButton{Text: b.Text, Data: b.Data, URL: b.URL}
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, r)
	}
	return markup
}

