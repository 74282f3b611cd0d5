package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/mailer"
)

// EmailSender интерфейс почтового клиента
type EmailSender interface {
	SendEmail(ctx context.Context, sendReq *mailer.SendEmailRequest) (*mailer.SendResult, error)
}

// EmailChannel канал уведомлений по электронной почте
type EmailChannel struct {
	sender EmailSender
}

// NewEmailChannel создает новый канал уведомлений по почте
func NewEmailChannel(sender EmailSender) *EmailChannel {
	return &EmailChannel{sender: sender}
}

// Name возвращает имя канала
func (c *EmailChannel) Name() string {
	return "email"
}

// Send отправляет письмо о смене статуса бронирования
func (c *EmailChannel) Send(ctx context.Context, n Notification) error {
	if n.CustomerEmail == "" {
		return fmt.Errorf("%w: Send - customer has no email", ErrChannelNotConfigured)
	}

	subject, html := renderEmail(n)

	_, err := c.sender.SendEmail(ctx, &mailer.SendEmailRequest{
		To:      n.CustomerEmail,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		if errors.Is(err, mailer.ErrChannelNotConfigured) {
			return fmt.Errorf("%w: Send - %v", ErrChannelNotConfigured, err)
		}
		return fmt.Errorf("Send - failed to send email: %w", err)
	}

	return nil
}

func renderEmail(n Notification) (subject, html string) {
	switch n.NewStatus {
	case domain.StatusConfirmed:
		subject = fmt.Sprintf("Booking confirmed: %s on %s", n.ServiceName, n.BookingDate)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your booking for <b>%s</b> on <b>%s</b> at <b>%s</b> is confirmed.</p>",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime,
		)
		if n.CancelURL != "" {
			html += fmt.Sprintf("<p>Need to cancel? <a href=%q>Cancel booking</a></p>", n.CancelURL)
		}
	case domain.StatusCancelled:
		subject = fmt.Sprintf("Booking cancelled: %s on %s", n.ServiceName, n.BookingDate)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your booking for <b>%s</b> on <b>%s</b> at <b>%s</b> has been cancelled.</p>",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime,
		)
	default:
		subject = fmt.Sprintf("Booking update: %s", n.ServiceName)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your booking for <b>%s</b> on <b>%s</b> at <b>%s</b> is now %s.</p>",
			n.CustomerName, n.ServiceName, n.BookingDate, n.StartTime, n.NewStatus,
		)
	}
	return subject, html
}
