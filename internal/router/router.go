package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ginger-beaver/OutlineBot/internal/metrics"
	"github.com/ginger-beaver/OutlineBot/internal/outline"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

// ErrInvalidArgument marks a command whose arguments could not be parsed.
var ErrInvalidArgument = errors.New("invalid argument format")

const (
	ReplyInvalidArgument = "Неправильный формат аргумента!"
	ReplyFailure         = "Не удалось выполнить команду, сервер VPN недоступен или вернул ошибку."
)

// KeyManager is the key-management API the handlers drive.
type KeyManager interface {
	ListKeys(ctx context.Context) ([]outline.AccessKey, error)
	GetKey(ctx context.Context, id int) (*outline.AccessKey, error)
	CreateKey(ctx context.Context, name string) (outline.AccessKey, error)
	DeleteKey(ctx context.Context, id int) (bool, error)
	RenameKey(ctx context.Context, id int, name string) (bool, error)
	DefaultDataLimit(ctx context.Context) *int64
	SetDataLimit(ctx context.Context, id int, bytesLimit int64) (bool, error)
	RemoveDataLimit(ctx context.Context, id int) (bool, error)
	SetDefaultDataLimit(ctx context.Context, bytesLimit int64) (bool, error)
	RemoveDefaultDataLimit(ctx context.Context) (bool, error)
}

// Sender delivers replies. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Config struct {
	AdminID   int64
	KeyURLTag string
}

// Deps is what every handler gets. One instance lives for the whole process.
type Deps struct {
	Keys KeyManager
	Bot  Sender
	Log  *zap.Logger
	Cfg  Config
}

// Reply sends plain text, split if it exceeds the message limit.
func (d Deps) Reply(chatID int64, text string) error {
	return d.send(chatID, text, "")
}

// ReplyHTML sends text using Telegram's HTML markup. Callers escape
// user-controlled parts.
func (d Deps) ReplyHTML(chatID int64, text string) error {
	return d.send(chatID, text, tgbotapi.ModeHTML)
}

func (d Deps) send(chatID int64, text, parseMode string) error {
	for _, chunk := range utils.SplitMessage(text, utils.MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = parseMode
		msg.DisableWebPagePreview = true
		if _, err := d.Bot.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// Command is an inbound bot command.
type Command struct {
	Name     string
	Args     string
	SenderID int64
	ChatID   int64
	Username string
}

type Handler interface {
	Name() string
	Description() string
	Handle(ctx context.Context, c Command, d Deps) error
}

type Router struct {
	handlers []Handler
	byName   map[string]Handler
}

func NewRouter(h ...Handler) *Router {
	r := &Router{byName: make(map[string]Handler, len(h))}
	for _, handler := range h {
		if _, dup := r.byName[handler.Name()]; dup {
			panic("router: duplicate handler " + handler.Name())
		}
		r.byName[handler.Name()] = handler
		r.handlers = append(r.handlers, handler)
	}
	return r
}

// Commands lists registered commands for the bot menu, in registration order.
func (r *Router) Commands() []tgbotapi.BotCommand {
	out := make([]tgbotapi.BotCommand, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, tgbotapi.BotCommand{Command: h.Name(), Description: h.Description()})
	}
	return out
}

// CommandFromUpdate extracts a command. ok is false for anything that is not
// a bot command sent by a user.
func CommandFromUpdate(u tgbotapi.Update) (Command, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || !m.IsCommand() {
		return Command{}, false
	}
	return Command{
		Name:     m.Command(),
		Args:     strings.TrimSpace(m.CommandArguments()),
		SenderID: m.From.ID,
		ChatID:   m.Chat.ID,
		Username: m.From.UserName,
	}, true
}

// Dispatch routes one update. Updates from anyone but the admin are dropped
// silently. Handler failures are logged and answered with a generic reply;
// the returned error only reports that the reply itself could not be sent.
func (r *Router) Dispatch(ctx context.Context, u tgbotapi.Update, d Deps) error {
	c, ok := CommandFromUpdate(u)
	if !ok {
		return nil
	}
	if c.SenderID != d.Cfg.AdminID {
		metrics.RejectedUpdatesTotal.Inc()
		d.Log.Debug("dropping command from unauthorized sender",
			zap.Int64("sender_id", c.SenderID), zap.String("command", c.Name))
		return nil
	}

	h, ok := r.byName[c.Name]
	if !ok {
		d.Log.Debug("unknown command", zap.String("command", c.Name))
		return nil
	}

	return r.run(ctx, h, c, d)
}

// Serve dispatches updates one at a time until ctx is done or updates is
// closed. Once ctx is done nothing else is dispatched, including updates the
// poller already delivered. Each command runs under its own timeout and is not
// cancelled by ctx.
func (r *Router) Serve(ctx context.Context, updates <-chan tgbotapi.Update, d Deps, timeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok || ctx.Err() != nil {
				return
			}
			cmdCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
			if err := r.Dispatch(cmdCtx, u, d); err != nil {
				d.Log.Error("handle error", zap.Error(err))
			}
			cancel()
		}
	}
}

func (r *Router) run(ctx context.Context, h Handler, c Command, d Deps) (err error) {
	log := d.Log.With(zap.String("command", c.Name), zap.String("args", c.Args))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			metrics.ObserveCommand(c.Name, metrics.ResultError, time.Since(start))
			log.Error("handler panic", zap.Any("panic", p), zap.Stack("stack"))
			err = d.Reply(c.ChatID, ReplyFailure)
		}
	}()

	herr := h.Handle(ctx, c, d)
	switch {
	case herr == nil:
		metrics.ObserveCommand(c.Name, metrics.ResultOK, time.Since(start))
		log.Info("command handled", zap.Duration("took", time.Since(start)))
		return nil
	case errors.Is(herr, ErrInvalidArgument):
		metrics.ObserveCommand(c.Name, metrics.ResultInvalid, time.Since(start))
		log.Info("invalid command arguments", zap.Error(herr))
		return d.Reply(c.ChatID, ReplyInvalidArgument)
	default:
		metrics.ObserveCommand(c.Name, metrics.ResultError, time.Since(start))
		log.Error("command failed", zap.Error(herr))
		return d.Reply(c.ChatID, ReplyFailure)
	}
}
