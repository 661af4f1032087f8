package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/calloway/ledgerdesk/internal/notify"
)

// mockSession records sent embeds.
type mockSession struct {
	embeds   []*discordgo.MessageEmbed
	channels []string
	closed   bool
	err      error
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.channels = append(m.channels, channelID)
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{}, nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "123"}); err == nil {
		t.Error("expected error without bot token")
	}
	if _, err := New(Opts{BotToken: "t"}); err == nil {
		t.Error("expected error without channel ID")
	}
}

func TestSend(t *testing.T) {
	sess := &mockSession{}
	s, err := New(Opts{Session: sess, ChannelID: "555"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	msg := notify.Message{
		Title:    "Runaway rule",
		Body:     "rule 9 exceeded the catch-up cap",
		Severity: "warning",
		Fields:   []notify.Field{{Name: "rule", Value: "9"}},
	}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sess.embeds) != 1 {
		t.Fatalf("sent %d embeds, want 1", len(sess.embeds))
	}
	embed := sess.embeds[0]
	if embed.Title != "Runaway rule" {
		t.Errorf("title = %q", embed.Title)
	}
	if embed.Color != hexColor(notify.ColorWarning) {
		t.Errorf("color = %#x, want %#x", embed.Color, hexColor(notify.ColorWarning))
	}
	if len(embed.Fields) != 1 || embed.Fields[0].Name != "rule" {
		t.Errorf("fields = %+v", embed.Fields)
	}
}

func TestSend_Error(t *testing.T) {
	sess := &mockSession{err: fmt.Errorf("gateway down")}
	s, err := New(Opts{Session: sess, ChannelID: "555"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Send(context.Background(), notify.Message{}); err == nil {
		t.Error("expected send error")
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor("#36a64f"); got != 0x36a64f {
		t.Errorf("hexColor = %#x, want 0x36a64f", got)
	}
	if got := hexColor("junk"); got != 0 {
		t.Errorf("hexColor(junk) = %d, want 0", got)
	}
}
