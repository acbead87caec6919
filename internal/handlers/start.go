package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type Start struct{}

func (h Start) Name() string        { return "start" }
func (h Start) Description() string { return "приветствие" }

func (h Start) Handle(_ context.Context, c router.Command, d router.Deps) error {
	return d.Reply(c.ChatID, fmt.Sprintf("Привет, %s! \nЭто бот для управления VPN сервером."+
		" Воспользуйтесь кнопкой menu ниже для просмотра cписка команд.", c.Username))
}

// Help lists the commands registered next to it.
type Help struct {
	handlers []router.Handler
}

func (h *Help) Name() string        { return "help" }
func (h *Help) Description() string { return "список команд" }

func (h *Help) Handle(_ context.Context, c router.Command, d router.Deps) error {
	var b strings.Builder
	for _, other := range h.handlers {
		fmt.Fprintf(&b, "/%s — %s\n", other.Name(), other.Description())
	}
	return d.Reply(c.ChatID, strings.TrimSuffix(b.String(), "\n"))
}

// All returns every command handler in menu order.
func All() []router.Handler {
	help := &Help{}
	hs := []router.Handler{
		Start{},
		help,
		Stats{},
		Create{},
		Delete{},
		Rename{},
		GetKeys{},
		GetKey{},
		GetDefaultLimit{},
		SetLimit{},
		DelLimit{},
		SetDefaultLimit{},
		DelDefaultLimit{},
	}
	help.handlers = hs
	return hs
}
