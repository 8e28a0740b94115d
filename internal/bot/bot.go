package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sender is the part of the Telegram bot API used to answer commands
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Init initializes the Telegram bot
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, errors.Wrap(err, "invalid or expired Telegram token, check TELEGRAM_BOT_TOKEN")
		}
		return nil, errors.Wrap(err, "could not connect to Telegram")
	}

	bot.Debug = false
	log.Infof("Bot authorized as %s", bot.Self.UserName)
	return bot, nil
}

// Run feeds incoming messages to cmds until ctx is done
func Run(ctx context.Context, api *tgbotapi.BotAPI, cmds *Commands) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			cmds.Handle(ctx, update.Message)
		}
	}
}
