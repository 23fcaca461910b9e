package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bot-api/telegram"
)

// chat delivers a text message to one conversation.
type chat interface {
	Send(ctx context.Context, text string) error
}

type telegramChat struct {
	api    *telegram.API
	chatID int64
}

func (c telegramChat) Send(ctx context.Context, text string) error {
	_, err := c.api.SendMessage(ctx, telegram.NewMessage(c.chatID, text))
	return err
}

// TelegramSink posts one report per run, listing every surface with its range.
type TelegramSink struct {
	chat chat
	now  func() time.Time
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram sink: token and chat id are required")
	}
	return newTelegramSink(telegramChat{api: telegram.New(token), chatID: chatID}), nil
}

func newTelegramSink(c chat) *TelegramSink {
	return &TelegramSink{chat: c, now: time.Now}
}

func (s *TelegramSink) Publish(ctx context.Context, artifacts []Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	if err := s.chat.Send(ctx, report(artifacts, s.now())); err != nil {
		return fmt.Errorf("telegram report: %w", err)
	}
	return nil
}

func report(artifacts []Artifact, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Surfaces ready %s", now.UTC().Format("2006-01-02 15:04 MST"))
	for _, a := range artifacts {
		sum := summarize(a, now)
		fmt.Fprintf(&b, "\n%s over %s x %s, %dx%d, min %.4f max %.4f (%s)",
			sum.Measure, sum.X, sum.Y, sum.Rows, sum.Cols, float64(sum.Min), float64(sum.Max), sum.File)
	}
	return b.String()
}
