package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

const (
	msgBatchDone    = "📊 Пакет обработан"
	msgSucceeded    = "✅ Успешно: %d"
	msgFailed       = "⚠️ Ошибок: %d"
	msgDetected     = "🔬 Найдено объектов: %d"
	msgFailedFiles  = "❌ Не удалось обработать:"
	msgMoreFailures = "… и ещё %d"

	// сколько ошибок перечислять в сообщении
	maxListedFailures = 10
)

// Notifier отправляет сводку по пакету в чат Telegram
type Notifier struct {
	token  string
	chatID int64
	logger *zap.SugaredLogger

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// NewNotifier создаёт уведомитель. Подключение к API откладывается до первой отправки.
func NewNotifier(token string, chatID int64, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		token:  token,
		chatID: chatID,
		logger: logger,
	}
}

// Notify отправляет сводку отчёта
func (n *Notifier) Notify(ctx context.Context, report *entity.BatchReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	api, err := n.client()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatReport(report))
	if _, err := api.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	n.logger.Debugf("Sent batch summary to chat %d", n.chatID)
	return nil
}

// client создаёт клиента API при первом обращении
func (n *Notifier) client() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.api != nil {
		return n.api, nil
	}
	api, err := tgbotapi.NewBotAPI(n.token)
	if err != nil {
		return nil, errors.Wrap(err, "connect to telegram")
	}
	n.logger.Infof("Authorized on account %s", api.Self.UserName)
	n.api = api
	return api, nil
}

// FormatReport собирает текст сообщения
func FormatReport(report *entity.BatchReport) string {
	lines := []string{
		msgBatchDone,
		fmt.Sprintf(msgSucceeded, report.Succeeded()),
		fmt.Sprintf(msgFailed, report.Failed()),
		fmt.Sprintf(msgDetected, report.TotalDetected()),
	}

	var failed []entity.Outcome
	for _, o := range report.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", msgFailedFiles)
	for i, o := range failed {
		if i == maxListedFailures {
			lines = append(lines, fmt.Sprintf(msgMoreFailures, len(failed)-maxListedFailures))
			break
		}
		lines = append(lines, fmt.Sprintf("• %s: %v", o.Record.Name(), o.Err))
	}
	return strings.Join(lines, "\n")
}

var _ port.Notifier = (*Notifier)(nil)
