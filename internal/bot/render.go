package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finbot/internal/core"
	"finbot/internal/storage"
)

const historyLimit = 10

// Fixed user-facing texts. The dispatcher maps every error kind to its own
// message; the core never formats user-facing strings itself.
const (
	msgStart = "Привет! Я бот для учета финансов. Доступные команды:\n" +
		"/update - загрузить актуальные данные\n" +
		"/finance - посмотреть отчет по финансам\n" +
		"/period <дд.мм.гггг> <дд.мм.гггг> - данные за период\n" +
		"/project <название> - отчет по проекту\n" +
		"/history - последние запросы"

	msgPeriodUsage    = "❌ Неправильный формат. Введите: /period ДД.ММ.ГГГГ ДД.ММ.ГГГГ"
	msgProjectUsage   = "❌ Введите название проекта. Пример: /project Powerrise"
	msgUnknownCommand = "❌ Неизвестная команда. Отправьте /start для списка команд."
	msgRateLimited    = "⏳ Слишком много запросов. Попробуйте через минуту."

	msgRefreshQueued = "🔄 Обновление данных поставлено в очередь."
	msgRefreshDone   = "✅ Данные обновлены!"
	msgRefreshFailed = "❌ Ошибка загрузки данных."

	msgFileMissing = "❌ Файл данных не найден. Выполните /update."
	msgParseError  = "❌ Ошибка чтения файла данных."
	msgSchemaError = "❌ В файле данных отсутствуют нужные колонки."
	msgInternal    = "❌ Ошибка обработки данных."

	msgHistoryEmpty = "📭 Запросов пока не было."
)

func (b *Bot) renderStart(ctx context.Context) string {
	text := msgStart
	if last, ok := b.svc.LastRefresh(ctx); ok {
		text += fmt.Sprintf("\n\nПоследнее обновление данных: %s",
			last.CreatedAt.Format("02.01.2006 15:04"))
	}
	return text
}

func renderRefresh(queued bool, err error) string {
	if err != nil {
		return msgRefreshFailed
	}
	if queued {
		return msgRefreshQueued
	}
	return msgRefreshDone
}

func renderAggregate(rep core.AggregateReport) string {
	return fmt.Sprintf("📊 Финансовый отчет:\n"+
		"💰 Чистая прибыль: %s ₽\n"+
		"📈 Продажи: %s ₽\n"+
		"📉 Расходы: %s ₽",
		formatAmount(rep.NetProfit), formatAmount(rep.Proceeds), formatAmount(rep.Expenses))
}

func renderPeriod(rep core.PeriodReport) string {
	return fmt.Sprintf("📅 Данные за период %s - %s:\n💰 Чистая прибыль: %s ₽",
		rep.Start, rep.End, formatAmount(rep.NetProfit))
}

func renderProject(rep core.ProjectReport) string {
	return fmt.Sprintf("📊 Данные по проекту %s:\n💰 Чистая прибыль: %s ₽",
		rep.Project, formatAmount(rep.NetProfit))
}

func renderHistory(entries []storage.QueryLogEntry) string {
	if len(entries) == 0 {
		return msgHistoryEmpty
	}
	var sb strings.Builder
	sb.WriteString("🗒 Последние запросы:")
	for _, e := range entries {
		sb.WriteString("\n")
		sb.WriteString(e.CreatedAt.Format("02.01 15:04"))
		sb.WriteString(" /")
		sb.WriteString(e.Command)
		if e.Params != "" {
			sb.WriteString(" ")
			sb.WriteString(e.Params)
		}
	}
	return sb.String()
}

// renderError maps an error kind to its user-facing message. args carries
// the query parameters for the empty-result messages.
func renderError(err error, args []string) string {
	switch {
	case errors.Is(err, core.ErrNoMatchingRows):
		if len(args) == 2 {
			return fmt.Sprintf("❌ Нет данных за период %s - %s.", args[0], args[1])
		}
		if len(args) == 1 {
			return fmt.Sprintf("❌ Данных по проекту %s нет.", args[0])
		}
		return msgInternal
	case errors.Is(err, core.ErrInvalidDateFormat):
		return msgPeriodUsage
	case errors.Is(err, core.ErrInvalidArgument):
		return msgProjectUsage
	case errors.Is(err, core.ErrFileMissing):
		return msgFileMissing
	case errors.Is(err, core.ErrSchema):
		return msgSchemaError
	case errors.Is(err, core.ErrParse):
		return msgParseError
	default:
		return msgInternal
	}
}

// formatAmount renders cents as a decimal with two digits, e.g. "300.00".
func formatAmount(m core.Money) string {
	return fmt.Sprintf("%.2f", m.Units())
}
