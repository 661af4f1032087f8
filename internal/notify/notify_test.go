package notify

import (
	"context"
	"fmt"
	"testing"
)

// mockSender records sent messages and optionally fails.
type mockSender struct {
	sent []Message
	err  error
}

func (m *mockSender) Send(ctx context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSender) Close() error { return nil }

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{"success", ColorSuccess},
		{"warning", ColorWarning},
		{"error", ColorError},
		{"info", ColorInfo},
		{"", ColorInfo},
		{"unknown", ColorInfo},
	}
	for _, tt := range tests {
		if got := SeverityColor(tt.severity); got != tt.want {
			t.Errorf("SeverityColor(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestMulti_FanOut(t *testing.T) {
	a := &mockSender{}
	b := &mockSender{}
	m := Multi{a, b}

	msg := Message{Title: "run", Severity: "info"}
	if err := m.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("sent counts = %d, %d, want 1, 1", len(a.sent), len(b.sent))
	}
}

func TestMulti_FailingSenderDoesNotBlockOthers(t *testing.T) {
	bad := &mockSender{err: fmt.Errorf("boom")}
	good := &mockSender{}
	m := Multi{bad, good}

	err := m.Send(context.Background(), Message{Title: "run"})
	if err == nil {
		t.Fatal("expected error from failing sender")
	}
	if len(good.sent) != 1 {
		t.Errorf("good sender got %d messages, want 1", len(good.sent))
	}
}

func TestMulti_Empty(t *testing.T) {
	if err := (Multi{}).Send(context.Background(), Message{}); err != nil {
		t.Errorf("empty multi send: %v", err)
	}
}
