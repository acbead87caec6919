package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ginger-beaver/OutlineBot/internal/config"
	"github.com/ginger-beaver/OutlineBot/internal/handlers"
	"github.com/ginger-beaver/OutlineBot/internal/httpapi"
	"github.com/ginger-beaver/OutlineBot/internal/logger"
	"github.com/ginger-beaver/OutlineBot/internal/outline"
	"github.com/ginger-beaver/OutlineBot/internal/router"
	"github.com/ginger-beaver/OutlineBot/internal/scheduler"
	"github.com/ginger-beaver/OutlineBot/internal/tasks/statsreport"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "env-file",
		Value:   ".env",
		Usage:   "dotenv file loaded before reading the environment, ignored if missing",
		EnvVars: []string{"ENV_FILE"},
	},
}

func main() {
	app := &cli.App{
		Name:   "outline-bot",
		Usage:  "Telegram admin bot for an Outline VPN server",
		Flags:  flags,
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the bot (default)",
				Action: runBot,
			},
			{
				Name:   "check",
				Usage:  "connect to the Outline server once and print a summary",
				Action: checkServer,
			},
			{
				Name:  "env",
				Usage: "describe the environment variables",
				Action: func(cCtx *cli.Context) error {
					_, err := fmt.Fprintln(cCtx.App.Writer, config.Usage())
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBot(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String("env-file"))
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	client, err := outline.New(cfg.Outline.APIURL, cfg.Outline.Fingerprint, cfg.Outline.Timeout)
	if err != nil {
		return fmt.Errorf("outline client: %w", err)
	}
	defer client.Close()

	_ = tgbotapi.SetLogger(logger.NewBotAPILogger(logger.WithComponent(lg, "telegram")))
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Telegram.Debug
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	r := router.NewRouter(handlers.All()...)
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(r.Commands()...)); err != nil {
		lg.Warn("failed to register command menu", zap.Error(err))
	}

	deps := router.Deps{
		Keys: client,
		Bot:  bot,
		Log:  logger.WithComponent(lg, "router"),
		Cfg: router.Config{
			AdminID:   cfg.Telegram.AdminID,
			KeyURLTag: cfg.Outline.KeyURLTag,
		},
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ops *httpapi.Server
	if cfg.OpsAddr != "" {
		ops = httpapi.New(cfg.OpsAddr, logger.WithComponent(lg, "ops"))
		go func() {
			if err := ops.Run(); err != nil {
				lg.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	var sched *scheduler.Scheduler
	if cfg.StatsSchedule != "" {
		report := statsreport.New(deps)
		sched = scheduler.New(logger.WithComponent(lg, "scheduler"), cfg.CommandTimeout)
		sched.RegisterTask(report)
		if err := sched.Start([]scheduler.Schedule{{TaskName: report.Name(), Spec: cfg.StatsSchedule}}); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.PollTimeout
	u.AllowedUpdates = []string{"message"}

	updates := bot.GetUpdatesChan(u)

	lg.Info("bot started", zap.Int64("admin_id", cfg.Telegram.AdminID))
	r.Serve(ctx, updates, deps, cfg.CommandTimeout)

	lg.Info("shutting down, no new commands are accepted")
	bot.StopReceivingUpdates()

	if sched != nil {
		sched.Stop()
	}
	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			lg.Warn("ops server shutdown", zap.Error(err))
		}
	}
	lg.Info("bot stopped")
	return nil
}

func checkServer(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String("env-file"))
	if err != nil {
		return err
	}

	client, err := outline.New(cfg.Outline.APIURL, cfg.Outline.Fingerprint, cfg.Outline.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cCtx.Context, cfg.CommandTimeout)
	defer cancel()

	info, err := client.ServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("server info: %w", err)
	}
	keys, err := client.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	var used int64
	for _, k := range keys {
		used += k.UsedBytes
	}

	_, err = fmt.Fprintf(cCtx.App.Writer,
		"server: %s (%s), version %s\nkeys: %d\ntransferred: %s\ndefault limit: %s\n",
		info.Name, info.ServerID, info.Version,
		len(keys), utils.FormatGB(used), utils.FormatLimit(info.DefaultDataLimit),
	)
	return err
}
