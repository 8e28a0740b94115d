package notifier

import (
	"errors"
	"net/http"
)

// Option is a functional option supplied to New.
type Option func(*Notifier) error

// WithHTTPClient sets the client used to post webhooks.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) error {
		if client == nil {
			return errors.New("nil http client")
		}
		n.client = client
		return nil
	}
}

// WithTelegram mirrors every delivered alert to chatID. A nil sender or a
// zero chat ID disables the mirror.
func WithTelegram(sender Sender, chatID int64) Option {
	return func(n *Notifier) error {
		n.telegram = sender
		n.chatID = chatID
		return nil
	}
}
