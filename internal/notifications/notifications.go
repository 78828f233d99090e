package notifications

import (
	"context"
	"errors"
	"html"
	"net/http"
	"slices"
	"strings"
	"time"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/upstream"
	"github.com/google/uuid"
)

const defaultAsyncTimeout = 15 * time.Second

// per-value caps; the body gets whatever room is left
const (
	maxTitleBytes = 256
	maxFieldBytes = 256
)

// creates the service; a nil notifier drops every notification
func New(notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Service{notifier: notifier, asyncTimeout: defaultAsyncTimeout}
}

// reports whether notifications reach anyone
func (s *Service) Configured() bool {
	_, nop := s.notifier.(NopNotifier)
	return !nop
}

// delivers n and reports the outcome to the caller
func (s *Service) NotifyAdmins(ctx context.Context, n Notification) error {
	if !s.Configured() {
		return apperrors.NewConfigurationError("TELEGRAM_BOT_TOKEN")
	}

	err := s.notifier.Send(ctx, Format(n))
	if err == nil {
		return nil
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return err
	}

	return apperrors.NewSafe(apperrors.CodeNotificationFailed,
		apperrors.WithStatus(http.StatusBadGateway),
		apperrors.WithCause(err),
	)
}

// delivers n in the background; failures are logged, never returned
func (s *Service) NotifyAdminsAsync(n Notification) {
	if !s.Configured() {
		logger.Debug("admin notification skipped, telegram not configured", "title", n.Title)
		return
	}

	text := Format(n)
	id := uuid.NewString()

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.asyncTimeout)
		defer cancel()

		if err := s.notifier.Send(ctx, text); err != nil {
			logger.Warn("admin notification failed",
				"notification_id", id,
				"title", n.Title,
				"error", err,
			)
		}
	}()
}

// waits for in-flight async notifications, up to the context deadline
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// renders n as Telegram HTML; every user-supplied value is escaped. Values are
// cut before escaping so the result fits one message and stays well-formed.
func Format(n Notification) string {
	var head strings.Builder

	if prefix := levelPrefix(n.Level); prefix != "" {
		head.WriteString(prefix)
		head.WriteString(" ")
	}

	head.WriteString("<b>")
	head.WriteString(escapeWithin(n.Title, maxTitleBytes))
	head.WriteString("</b>")

	var fields strings.Builder

	if len(n.Fields) > 0 {
		keys := make([]string, 0, len(n.Fields))
		for k := range n.Fields {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		fields.WriteString("\n")
		for _, k := range keys {
			fields.WriteString("\n<b>")
			fields.WriteString(escapeWithin(k, maxFieldBytes))
			fields.WriteString(":</b> ")
			fields.WriteString(escapeWithin(n.Fields[k], maxFieldBytes))
		}
	}

	text := head.String()

	if n.Body != "" {
		budget := maxMessageLength - len(text) - fields.Len() - len("\n\n")
		text += "\n\n" + escapeWithin(n.Body, budget)
	}

	return text + fields.String()
}

// escapes s, dropping whole runes from the end until the escaped text fits in limit bytes
func escapeWithin(s string, limit int) string {
	escaped := html.EscapeString(s)
	if len(escaped) <= limit {
		return escaped
	}

	budget := limit - len(ellipsis)

	var b strings.Builder
	for _, r := range s {
		piece := html.EscapeString(string(r))
		if b.Len()+len(piece) > budget {
			break
		}

		b.WriteString(piece)
	}

	b.WriteString(ellipsis)
	return b.String()
}

func levelPrefix(level Level) string {
	switch level {
	case LevelWarning:
		return "[WARNING]"
	case LevelCritical:
		return "[CRITICAL]"
	case LevelInfo:
		return "[INFO]"
	}

	return ""
}
