// Package notify delivers operational reports (scheduler runs, runaway
// rules) to chat platforms. Delivery is outbound-only; the core never
// consumes chat input.
package notify

import (
	"context"
	"errors"
)

// Color constants for message severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Message is a formatted operational report.
type Message struct {
	Title    string
	Body     string
	Severity string // "info", "warning", "error", "success"
	Fields   []Field
}

// Field is a key-value pair displayed alongside a message.
type Field struct {
	Name  string
	Value string
}

// Sender delivers messages to a single destination.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// SeverityColor maps a severity string to a sidebar color hint.
func SeverityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// Multi fans a message out to every configured sender. A failing destination
// does not stop delivery to the others.
type Multi []Sender

// Send delivers msg to all senders, joining any errors.
func (m Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all senders.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
