package handlers

import (
	"context"
	"fmt"

	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type Delete struct{}

func (h Delete) Name() string        { return "del" }
func (h Delete) Description() string { return "удалить ключ: /del <id>" }

func (h Delete) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	id, err := parseID(c.Args)
	if err != nil {
		return err
	}
	ok, err := d.Keys.DeleteKey(ctx, id)
	if err != nil {
		return err
	}
	text := "не существует!"
	if ok {
		text = "удален!"
	}
	return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d %s", id, text))
}

type Rename struct{}

func (h Rename) Name() string { return "rename" }
func (h Rename) Description() string {
	return "переименовать ключ: /rename <id> <имя>"
}

func (h Rename) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	rawID, name := splitFirst(c.Args)
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty name", router.ErrInvalidArgument)
	}
	ok, err := d.Keys.RenameKey(ctx, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d не существует!", id))
	}
	return d.Reply(c.ChatID, fmt.Sprintf("Ключ ID: %d переименован в '%s'", id, name))
}
