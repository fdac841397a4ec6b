package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/cinebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Registry holds bot commands and the handlers for decoded callback actions.
type Registry struct {
	commands map[string]Command

	actionsMu sync.RWMutex
	actions   map[string]tele.HandlerFunc

	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		actions:  make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a new command. Names must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	reason := ""
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		reason = "invalid"
	case name[0] != '/':
		reason = "no_slash_prefix"
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns commands sorted by name, optionally without hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves a command by name or alias and returns its canonical key.
// A trailing "@botname" and any arguments are ignored.
func (r *Registry) LookupCommand(text string) (string, Command, bool) {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// RegisterAction binds a handler to an action kind produced by the callback decoder.
func (r *Registry) RegisterAction(kind string, handler tele.HandlerFunc) error {
	if kind == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.action.skip",
			slog.String("kind", kind),
			slog.Bool("handler_nil", handler == nil),
		)
		return fmt.Errorf("invalid action registration %q", kind)
	}
	r.actionsMu.Lock()
	defer r.actionsMu.Unlock()
	if _, exists := r.actions[kind]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.action.duplicate",
			slog.String("kind", kind),
		)
		return fmt.Errorf("action already registered: %s", kind)
	}
	r.actions[kind] = handler
	return nil
}

// Action returns the handler registered for kind.
func (r *Registry) Action(kind string) (tele.HandlerFunc, bool) {
	r.actionsMu.RLock()
	defer r.actionsMu.RUnlock()
	h, ok := r.actions[kind]
	return h, ok
}

// ListActions returns sorted action kinds (for diagnostics).
func (r *Registry) ListActions() []string {
	r.actionsMu.RLock()
	defer r.actionsMu.RUnlock()
	kinds := make([]string, 0, len(r.actions))
	for k := range r.actions {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// SetTextFallback sets the handler for text that matches no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("count", len(list)),
	)
}
