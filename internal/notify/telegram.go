package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studybot/pkg/models"
)

// Telegram delivers study plans to a single chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// SendPlans formats the generated day plans into one message and sends it.
func (t *Telegram) SendPlans(plans []models.DayPlan) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatPlans(plans))
	msg.ParseMode = "Markdown"
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send plan message: %v", err)
	}
	return nil
}

// FormatPlans renders day plans as a Markdown digest, one section per day.
func FormatPlans(plans []models.DayPlan) string {
	var b strings.Builder
	b.WriteString("📚 *Study plan*\n")

	for _, p := range plans {
		b.WriteString(fmt.Sprintf("\n*%s*", p.Date.Format("Mon, 02 Jan")))
		if p.Shortfall {
			b.WriteString(" ⚠️ _fewer due items than planned_")
		}
		b.WriteString("\n")

		if len(p.Items) == 0 {
			b.WriteString("Nothing due. 🎉\n")
			continue
		}
		for _, it := range p.Items {
			days := 0
			if !it.DueDate.IsZero() && it.DueDate.Before(p.Date) {
				days = int(p.Date.Sub(it.DueDate).Hours() / 24)
			}
			if days > 0 {
				b.WriteString(fmt.Sprintf("• %s — %s (overdue %dd)\n", it.Subject, it.Question, days))
			} else {
				b.WriteString(fmt.Sprintf("• %s — %s\n", it.Subject, it.Question))
			}
		}
	}
	return b.String()
}
