package handlers

import (
	"context"
	"fmt"

	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type Create struct{}

func (h Create) Name() string        { return "create" }
func (h Create) Description() string { return "создать ключ: /create [имя]" }

func (h Create) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	key, err := d.Keys.CreateKey(ctx, c.Args)
	if err != nil {
		return err
	}
	if err := d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %s, Name: '%s' создан!", key.ID, key.Name)); err != nil {
		return err
	}
	return d.ReplyHTML(c.ChatID, codeURL(key, d.Cfg.KeyURLTag))
}
