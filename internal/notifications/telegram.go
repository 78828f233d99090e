package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/gamevault/server/internal/upstream"
)

// Telegram rejects longer messages
const maxMessageLength = 4096

const ellipsis = "…"

type httpDoer interface {
	DoJSON(ctx context.Context, r upstream.Request, out any) error
}

// creates a notifier sending to every chat in chatIDs
func NewTelegramNotifier(apiURL, token string, chatIDs []int64, opts ...upstream.Option) *TelegramNotifier {
	base := []upstream.Option{
		upstream.WithTimeout(10 * time.Second),
		// Bot API allows about 30 messages per second
		upstream.WithRateLimit(25, 5),
	}

	return &TelegramNotifier{
		apiURL:  strings.TrimRight(apiURL, "/"),
		token:   token,
		chatIDs: chatIDs,
		http:    upstream.New("telegram", append(base, opts...)...),
	}
}

// sends text to every admin chat; failures for individual chats are joined
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if len(t.chatIDs) == 0 {
		return errors.New("telegram: no admin chat ids configured")
	}

	text = truncateMessage(text, maxMessageLength)

	var errs []error

	for _, chatID := range t.chatIDs {
		var resp sendMessageResponse

		err := t.http.DoJSON(ctx, upstream.Request{
			Op:     "send message",
			Method: http.MethodPost,
			// the token is part of the path; upstream errors never include the URL
			URL: fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token),
			Body: sendMessageRequest{
				ChatID:                chatID,
				Text:                  text,
				ParseMode:             "HTML",
				DisableWebPagePreview: true,
			},
		}, &resp)

		if err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}

		if !resp.OK {
			errs = append(errs, fmt.Errorf("chat %d: telegram rejected message: %s", chatID, resp.Description))
		}
	}

	return errors.Join(errs...)
}

// cuts text to at most n bytes without splitting a UTF-8 sequence, an HTML
// entity or a tag
func truncateMessage(text string, n int) string {
	if len(text) <= n {
		return text
	}

	cut := n - len(ellipsis)
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}

	// an '&' or '<' after the last ';' or '>' opens an entity or tag the cut would split
	open := strings.LastIndexAny(text[:cut], "&<")
	if open >= 0 && open > strings.LastIndexAny(text[:cut], ";>") {
		cut = open
	}

	return text[:cut] + ellipsis
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
