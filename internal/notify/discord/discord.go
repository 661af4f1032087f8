// Package discord implements the notify Sender for Discord via the REST API.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/calloway/ledgerdesk/internal/notify"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

// Sender posts notify messages to a Discord channel.
type Sender struct {
	sess      session
	channelID string
}

// Opts holds parameters for creating a Discord Sender.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of a real gateway session.
	Session session
}

// New creates a Discord Sender.
func New(opts Opts) (*Sender, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel ID is required")
	}
	sess := opts.Session
	if sess == nil {
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		sess = s
	}
	return &Sender{sess: sess, channelID: opts.ChannelID}, nil
}

// Send posts msg as an embed with a severity-colored sidebar.
func (s *Sender) Send(ctx context.Context, msg notify.Message) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       hexColor(notify.SeverityColor(msg.Severity)),
		Fields:      fields,
	}

	_, err := s.sess.ChannelMessageSendEmbed(s.channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: post to %s: %w", s.channelID, err)
	}
	return nil
}

// Close shuts the underlying session.
func (s *Sender) Close() error { return s.sess.Close() }

// hexColor converts a "#rrggbb" string to the int Discord embeds expect.
func hexColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
