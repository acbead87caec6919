package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type GetKeys struct{}

func (h GetKeys) Name() string        { return "get_keys" }
func (h GetKeys) Description() string { return "все ключи со ссылками" }

func (h GetKeys) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	keys, err := d.Keys.ListKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return d.Reply(c.ChatID, "Ключей нет.")
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyHTML(k, d.Cfg.KeyURLTag))
	}
	return d.ReplyHTML(c.ChatID, strings.Join(parts, ";\n"))
}

type GetKey struct{}

func (h GetKey) Name() string        { return "get_key" }
func (h GetKey) Description() string { return "ключ по id: /get_key <id>" }

func (h GetKey) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	id, err := parseID(c.Args)
	if err != nil {
		return err
	}
	key, err := d.Keys.GetKey(ctx, id)
	if err != nil {
		return err
	}
	if key == nil {
		return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d не существует!", id))
	}
	return d.ReplyHTML(c.ChatID, fmt.Sprintf("%s\n%s\n%s",
		html.EscapeString(key.String()),
		html.EscapeString(UsageLine(*key)),
		codeURL(*key, d.Cfg.KeyURLTag),
	))
}
