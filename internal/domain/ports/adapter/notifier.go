package adapter

import "context"

// NotifierAdapter delivers billing notifications (payday reminders,
// low-balance warnings) to a subscriber's chat.
type NotifierAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
