package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urly/config"
	"urly/internal/bot"
	"urly/internal/monitor"
	"urly/internal/notifier"
	"urly/internal/web"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web front door and the in-process poller",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	serveCmd.Flags().String("host", "", "address to listen on")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	serveCmd.Flags().String("poll-schedule", "", `cron schedule of the poll cycle, "" keeps the configured one`)
	bindFlag(v, serveCmd, "host", "host")
	bindFlag(v, serveCmd, "port", "port")
	bindFlag(v, serveCmd, "poll_schedule", "poll-schedule")

	return serveCmd
}

func serve(cfg *config.Config) error {
	c, err := setup(cfg)
	if err != nil {
		return err
	}
	defer c.store.Close()

	var telegramBot *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		telegramBot, err = bot.Init(cfg.TelegramBotToken)
		if err != nil {
			return err
		}
	}

	n, err := newNotifier(cfg, telegramBot)
	if err != nil {
		return err
	}
	mon := monitor.New(c.registry, c.scrapers, n)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if telegramBot != nil {
		cmds := bot.NewCommands(telegramBot, c.registry, mon, cfg.TelegramChatID)
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Run(ctx, telegramBot, cmds)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mon.Start(ctx, cfg.PollSchedule); err != nil {
			log.Errorf("Monitor stopped: %v", err)
			stop()
		}
	}()

	deps := web.NewDependencies(c.registry, c.scrapers, cfg.ResolvePropertyName)
	app := web.NewAppWithDeps(cfg.Host, cfg.Port, deps)
	err = app.Start(ctx)

	stop()
	wg.Wait()

	if err != nil {
		return errors.Wrap(err, "web server failed")
	}
	log.Info("Shut down")
	return nil
}

// newNotifier posts webhooks with the configured timeout and mirrors alerts
// to the operator chat when a bot is configured
func newNotifier(cfg *config.Config, telegramBot *tgbotapi.BotAPI) (*notifier.Notifier, error) {
	options := []notifier.Option{
		notifier.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if telegramBot != nil {
		options = append(options, notifier.WithTelegram(telegramBot, cfg.TelegramChatID))
	}
	return notifier.New(options...)
}
