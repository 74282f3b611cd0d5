package notify

import "errors"

var (
	// ErrChannelNotConfigured постоянная ошибка канала: получатель или
	// бизнес не настроен для этого канала, повторы бессмысленны
	ErrChannelNotConfigured = errors.New("notify service: channel not configured")

	// ErrAllChannelsFailed возвращается, когда ни один канал не смог
	// доставить уведомление
	ErrAllChannelsFailed = errors.New("notify service: all channels failed")

	// ErrQueueFull возвращается, когда очередь диспетчера переполнена
	ErrQueueFull = errors.New("notify service: queue full")
)
