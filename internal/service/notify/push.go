package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/pushgate"
)

// PushSender интерфейс клиента шаблонных push-сообщений
type PushSender interface {
	SendTemplatedPush(ctx context.Context, businessID int64, to, message string) (*pushgate.SendResult, error)
}

// PushChannel канал уведомлений через шаблонные сообщения на телефон
type PushChannel struct {
	sender PushSender
}

// NewPushChannel создает новый push-канал уведомлений
func NewPushChannel(sender PushSender) *PushChannel {
	return &PushChannel{sender: sender}
}

// Name возвращает имя канала
func (c *PushChannel) Name() string {
	return "push"
}

// Send отправляет сообщение о смене статуса бронирования
func (c *PushChannel) Send(ctx context.Context, n Notification) error {
	if n.CustomerPhone == "" {
		return fmt.Errorf("%w: Send - customer has no phone", ErrChannelNotConfigured)
	}

	_, err := c.sender.SendTemplatedPush(ctx, n.BusinessID, n.CustomerPhone, renderPush(n))
	if err != nil {
		if errors.Is(err, pushgate.ErrChannelNotConfigured) {
			return fmt.Errorf("%w: Send - %v", ErrChannelNotConfigured, err)
		}
		return fmt.Errorf("Send - failed to send push: %w", err)
	}

	return nil
}

func renderPush(n Notification) string {
	switch n.NewStatus {
	case domain.StatusConfirmed:
		msg := fmt.Sprintf("%s, your booking for %s on %s at %s is confirmed.",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime)
		if n.CancelURL != "" {
			msg += " Cancel: " + n.CancelURL
		}
		return msg
	case domain.StatusCancelled:
		return fmt.Sprintf("%s, your booking for %s on %s at %s has been cancelled.",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime)
	default:
		return fmt.Sprintf("%s, your booking for %s on %s at %s is now %s.",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime, n.NewStatus)
	}
}
