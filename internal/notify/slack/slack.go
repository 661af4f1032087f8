// Package slack implements the notify Sender for Slack via the Web API.
package slack

import (
	"context"
	"fmt"

	"github.com/calloway/ledgerdesk/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Sender posts notify messages to a Slack channel.
type Sender struct {
	client    slackClient
	channelID string
}

// Opts holds parameters for creating a Slack Sender.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Sender.
func New(opts Opts) (*Sender, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel ID is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Sender{client: client, channelID: opts.ChannelID}, nil
}

// Send posts msg as an attachment with a severity-colored sidebar.
func (s *Sender) Send(ctx context.Context, msg notify.Message) error {
	fields := make([]slackapi.AttachmentField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: true,
		})
	}

	attachment := slackapi.Attachment{
		Title:  msg.Title,
		Text:   msg.Body,
		Color:  notify.SeverityColor(msg.Severity),
		Fields: fields,
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", s.channelID, err)
	}
	return nil
}

// Close is a no-op; the Web API client holds no connection.
func (s *Sender) Close() error { return nil }
