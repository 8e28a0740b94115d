// Package notifier delivers vacancy alerts to Slack incoming webhooks and,
// optionally, mirrors them to an operator Telegram chat.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"urly/internal/models"
)

const defaultTimeout = 30 * time.Second

// Sender is the part of the Telegram bot API used to mirror alerts
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Alert is one vacancy notification
type Alert struct {
	Message      string
	PropertyURL  string
	PropertyName string
	Vacancies    int
}

// NewAlert builds the alert for a subscription that reached its threshold
func NewAlert(sub *models.Subscription, vacancies int) Alert {
	msg := fmt.Sprintf("Vacancy available: %d room(s) found!", vacancies)
	if sub.PropertyName != "" {
		msg = sub.PropertyName + ": " + msg
	}
	return Alert{
		Message:      msg,
		PropertyURL:  sub.PropertyURL,
		PropertyName: sub.PropertyName,
		Vacancies:    vacancies,
	}
}

// NotifyError is returned when an alert could not be delivered
type NotifyError struct {
	Code int // HTTP status, zero on transport failure
	Err  error
}

func (e *NotifyError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("webhook returned status %d", e.Code)
	}
	return fmt.Sprintf("could not send webhook: %v", e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Notifier sends alerts
type Notifier struct {
	client   *http.Client
	telegram Sender
	chatID   int64
}

// New returns a Notifier with the supplied options applied. See
// WithHTTPClient and WithTelegram.
func New(options ...Option) (*Notifier, error) {
	n := &Notifier{client: &http.Client{Timeout: defaultTimeout}}

	for i, opt := range options {
		if err := opt(n); err != nil {
			return nil, errors.Wrapf(err, "could not apply option # %d", i)
		}
	}
	return n, nil
}

// Send posts the alert to the Slack webhook. When a Telegram mirror is set
// the alert is also sent there whatever the webhook outcome; mirror failures
// are only logged.
func (n *Notifier) Send(ctx context.Context, webhookURL string, a Alert) error {
	defer n.mirror(a)

	body, err := json.Marshal(slackPayload(a))
	if err != nil {
		return &NotifyError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return &NotifyError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &NotifyError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NotifyError{Code: resp.StatusCode}
	}
	return nil
}

func (n *Notifier) mirror(a Alert) {
	if n.telegram == nil || n.chatID == 0 {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, telegramText(a))
	if _, err := n.telegram.Send(msg); err != nil {
		log.Errorf("Failed to mirror alert to Telegram: %v", err)
	}
}

func telegramText(a Alert) string {
	return fmt.Sprintf("🏠 UR-ly Alert\n\n%s\nAvailable rooms: %d\n\nLink: %s", a.Message, a.Vacancies, a.PropertyURL)
}
