package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gcs-extract/api/internal/pipeline"
)

// maxSkipLines keeps the summary well under Telegram's 4096 char limit.
const maxSkipLines = 20

type Telegram struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	return &Telegram{Bot: bot, ChatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Publish sends the run summary to the configured chat.
func (t *Telegram) Publish(_ context.Context, rep pipeline.Report) error {
	msg := tgbotapi.NewMessage(t.ChatID, FormatReport(rep))
	msg.DisableWebPagePreview = true
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func FormatReport(rep pipeline.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s/%s)\n", rep.RunID, rep.Engine, rep.Model)
	fmt.Fprintf(&b, "Bucket: %s", rep.Bucket)
	if rep.Prefix != "" {
		fmt.Fprintf(&b, " prefix %s", rep.Prefix)
	}
	fmt.Fprintf(&b, "\nImages: %d, extracted: %d, skipped: %d\n", rep.Listed, len(rep.Records), len(rep.Skipped))
	if d := rep.FinishedAt.Sub(rep.StartedAt); d > 0 {
		fmt.Fprintf(&b, "Took: %s\n", d.Round(time.Millisecond))
	}
	b.WriteString(rep.Message())

	if len(rep.Skipped) > 0 {
		b.WriteString("\n\nSkipped:")
		for i, s := range rep.Skipped {
			if i == maxSkipLines {
				fmt.Fprintf(&b, "\n… and %d more", len(rep.Skipped)-maxSkipLines)
				break
			}
			fmt.Fprintf(&b, "\n- %s: %s", s.Locator, s.Reason)
		}
	}
	return b.String()
}
