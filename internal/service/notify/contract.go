package notify

import "context"

// Channel канал доставки уведомлений. Send возвращает
// ErrChannelNotConfigured, когда канал не настроен у получателя
// или бизнеса - такая ошибка постоянная и не повторяется.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics интерфейс для метрик уведомлений
type Metrics interface {
	IncNotification(channel, outcome string)
}
