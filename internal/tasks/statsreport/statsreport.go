package statsreport

import (
	"context"
	"fmt"
	"time"

	"github.com/ginger-beaver/OutlineBot/internal/handlers"
	"github.com/ginger-beaver/OutlineBot/internal/router"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

// Task sends the per-key usage listing to the admin chat.
type Task struct {
	deps router.Deps
	now  func() time.Time
}

func New(deps router.Deps) *Task {
	return &Task{deps: deps, now: time.Now}
}

func (t *Task) Name() string {
	return "stats_report"
}

func (t *Task) Run(ctx context.Context) error {
	keys, err := t.deps.Keys.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	var total int64
	for _, k := range keys {
		total += k.UsedBytes
	}

	text := fmt.Sprintf("📊 Статистика VPN сервера\n%s\n\nКлючей: %d, трафик: %s\n\n%s",
		t.now().UTC().Format("02.01.2006 15:04 UTC"),
		len(keys), utils.FormatGB(total),
		handlers.StatsText(keys),
	)

	if err := t.deps.Reply(t.deps.Cfg.AdminID, text); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
