package handlers

import (
	"context"
	"fmt"

	"github.com/ginger-beaver/OutlineBot/internal/outline"
	"github.com/ginger-beaver/OutlineBot/internal/router"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

type GetDefaultLimit struct{}

func (h GetDefaultLimit) Name() string { return "get_default_limit" }
func (h GetDefaultLimit) Description() string {
	return "лимит трафика по умолчанию"
}

func (h GetDefaultLimit) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	limit := d.Keys.DefaultDataLimit(ctx)
	if limit == nil {
		return d.Reply(c.ChatID, "Лимит по умолчанию не установлен.")
	}
	return d.Reply(c.ChatID, "Лимит по умолчанию: "+utils.FormatGB(*limit))
}

type SetLimit struct{}

func (h SetLimit) Name() string        { return "set_limit" }
func (h SetLimit) Description() string { return "лимит ключа: /set_limit <id> <ГБ>" }

func (h SetLimit) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	rawID, rawLimit := splitFirst(c.Args)
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	limit, err := parseLimit(rawLimit)
	if err != nil {
		return err
	}
	ok, err := d.Keys.SetDataLimit(ctx, id, limit)
	if err != nil {
		return err
	}
	if !ok {
		return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d не существует!", id))
	}
	return d.Reply(c.ChatID, fmt.Sprintf("Лимит ключа ID: %d установлен: %s", id, utils.FormatGB(limit)))
}

type DelLimit struct{}

func (h DelLimit) Name() string        { return "del_limit" }
func (h DelLimit) Description() string { return "снять лимит ключа: /del_limit <id>" }

func (h DelLimit) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	id, err := parseID(c.Args)
	if err != nil {
		return err
	}
	ok, err := d.Keys.RemoveDataLimit(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d не существует!", id))
	}
	return d.Reply(c.ChatID, fmt.Sprintf("Лимит ключа ID: %d снят", id))
}

type SetDefaultLimit struct{}

func (h SetDefaultLimit) Name() string { return "set_default_limit" }
func (h SetDefaultLimit) Description() string {
	return "лимит по умолчанию: /set_default_limit <ГБ>"
}

func (h SetDefaultLimit) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	limit, err := parseLimit(c.Args)
	if err != nil {
		return err
	}
	ok, err := d.Keys.SetDefaultDataLimit(ctx, limit)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: default limit rejected", outline.ErrServer)
	}
	return d.Reply(c.ChatID, "Лимит по умолчанию установлен: "+utils.FormatGB(limit))
}

type DelDefaultLimit struct{}

func (h DelDefaultLimit) Name() string        { return "del_default_limit" }
func (h DelDefaultLimit) Description() string { return "снять лимит по умолчанию" }

func (h DelDefaultLimit) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	ok, err := d.Keys.RemoveDefaultDataLimit(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: default limit removal rejected", outline.ErrServer)
	}
	return d.Reply(c.ChatID, "Лимит по умолчанию снят.")
}
