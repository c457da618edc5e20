package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier pushes lifecycle events to a Telegram chat. Send failures
// are logged and swallowed; the simulation never fails because of them.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier creates a Telegram-backed notifier for the given bot
// token and chat.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *TelegramNotifier) send(text string) {
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.logger.Warn("failed to send telegram notification", zap.Error(err))
	}
}

func (n *TelegramNotifier) NotifyStarted(scenarioID, userID string, estimatedSeconds int) {
	n.send(fmt.Sprintf("Simulation %s started (est. %ds)", scenarioID, estimatedSeconds))
}

func (n *TelegramNotifier) NotifyProgress(scenarioID, userID string, progress float64, status, step string, etaSeconds int) {
	// Only milestone updates; per-step spam is not useful in a chat.
	if int(progress)%25 != 0 {
		return
	}
	n.send(fmt.Sprintf("Simulation %s: %.0f%%, %s (eta %ds)", scenarioID, progress, step, etaSeconds))
}

func (n *TelegramNotifier) NotifyCompleted(scenarioID, userID, runID string, execSeconds float64) {
	n.send(fmt.Sprintf("Simulation %s completed in %.1fs (run %s)", scenarioID, execSeconds, runID))
}

func (n *TelegramNotifier) NotifyError(scenarioID, userID, message string) {
	n.send(fmt.Sprintf("Simulation %s failed: %s", scenarioID, message))
}
