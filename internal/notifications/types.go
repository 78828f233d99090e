package notifications

import (
	"context"
	"sync"
	"time"
)

// severity shown in front of the title
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// a message for the operators
type Notification struct {
	Title string
	Body  string
	Level Level

	// rendered as "key: value" lines, sorted by key
	Fields map[string]string
}

// delivers rendered text to the admins
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// posts to the Telegram Bot API
type TelegramNotifier struct {
	apiURL  string
	token   string
	chatIDs []int64
	http    httpDoer
}

// used when Telegram is not configured; every send is dropped
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, string) error {
	return nil
}

// fans notifications out to the configured notifier
type Service struct {
	notifier     Notifier
	asyncTimeout time.Duration
	wg           sync.WaitGroup
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}
