package ui

import tele "gopkg.in/telebot.v4"

// NewPhotoResult creates an inline PhotoResult with an HTML caption.
// The photo URL doubles as the thumbnail.
func NewPhotoResult(id, photoURL, title, caption string, markup *tele.ReplyMarkup) *tele.PhotoResult {
	result := &tele.PhotoResult{
		URL:      photoURL,
		ThumbURL: photoURL,
		Title:    title,
		Caption:  caption,
	}
	result.SetResultID(id)
	result.ParseMode = tele.ModeHTML
	result.ReplyMarkup = markup
	return result
}
