package state

// State names the menu currently displayed in a chat.
type State string

// Manager stores the current State per chat.
type Manager interface {
	// Get returns the chat's state, or the manager's initial state when unknown.
	Get(chatID int64) State
	Set(chatID int64, st State)
	Clear(chatID int64)
}
