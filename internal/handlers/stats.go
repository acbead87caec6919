package handlers

import (
	"context"

	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type Stats struct{}

func (h Stats) Name() string        { return "stats" }
func (h Stats) Description() string { return "трафик по ключам" }

func (h Stats) Handle(ctx context.Context, c router.Command, d router.Deps) error {
	keys, err := d.Keys.ListKeys(ctx)
	if err != nil {
		return err
	}
	return d.Reply(c.ChatID, StatsText(keys))
}
