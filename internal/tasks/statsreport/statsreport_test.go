package statsreport

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginger-beaver/OutlineBot/internal/outline"
	"github.com/ginger-beaver/OutlineBot/internal/router"
)

type stubKeys struct {
	router.KeyManager
	keys []outline.AccessKey
	err  error
}

func (s stubKeys) ListKeys(context.Context) ([]outline.AccessKey, error) {
	return s.keys, s.err
}

type recordingBot struct {
	sent []tgbotapi.MessageConfig
}

func (b *recordingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestRun(t *testing.T) {
	bot := &recordingBot{}
	task := New(router.Deps{
		Keys: stubKeys{keys: []outline.AccessKey{
			{ID: "1", Name: "A", UsedBytes: 2_000_000_000},
			{ID: "2", Name: "B", UsedBytes: 3_000_000_000},
		}},
		Bot: bot,
		Log: zap.NewNop(),
		Cfg: router.Config{AdminID: 77},
	})
	task.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, task.Run(context.Background()))

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(77), bot.sent[0].ChatID)
	assert.Equal(t,
		"📊 Статистика VPN сервера\n01.03.2024 09:00 UTC\n\nКлючей: 2, трафик: 5.00 ГБ\n\nB: 3.00 ГБ / ∞;\nA: 2.00 ГБ / ∞",
		bot.sent[0].Text)
}

func TestRun_ListError(t *testing.T) {
	bot := &recordingBot{}
	task := New(router.Deps{
		Keys: stubKeys{err: outline.ErrServer},
		Bot:  bot,
		Log:  zap.NewNop(),
		Cfg:  router.Config{AdminID: 77},
	})

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, outline.ErrServer))
	assert.Empty(t, bot.sent)
}
