// Package notify posts backfill run summaries to operators. Transport is
// behind the Notifier interface; Slack is the one shipped implementation.
package notify

import (
	"log"

	"github.com/slack-go/slack"
)

// Notifier delivers a run-summary message. Implementations must be safe to
// call after a failed run.
type Notifier interface {
	Notify(message string) error
}

// Noop is used when no notification channel is configured.
type Noop struct{}

func (Noop) Notify(string) error { return nil }

// SlackNotifier posts messages to a fixed channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{api: slack.New(token), channel: channel}
}

func (n *SlackNotifier) Notify(message string) error {
	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(message, false))
	if err != nil {
		log.Printf("slack notify error: %v", err)
	}
	return err
}
