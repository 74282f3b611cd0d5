// Package notify реализует доставку уведомлений клиентам о смене статуса
// бронирования по нескольким каналам параллельно, с ограниченными повторами.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
)

const (
	defaultWorkers      = 4
	defaultQueueSize    = 256
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 500 * time.Millisecond
	defaultSendTimeout  = 10 * time.Second
)

// Dispatcher рассылает уведомления по всем каналам через пул воркеров.
// Submit не блокирует вызывающий код: переход статуса бронирования
// не должен зависеть от доступности каналов доставки.
type Dispatcher struct {
	channels     []Channel
	queue        chan Notification
	workers      int
	maxAttempts  int
	retryBackoff time.Duration
	sendTimeout  time.Duration
	logger       Logger
	metrics      Metrics

	wg       sync.WaitGroup
	closeOne sync.Once
}

// DispatcherOptions параметры диспетчера; нулевые значения заменяются
// значениями по умолчанию
type DispatcherOptions struct {
	Workers      int
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
	SendTimeout  time.Duration
}

// NewDispatcher создает диспетчер и запускает пул воркеров
func NewDispatcher(channels []Channel, opts DispatcherOptions, logger Logger, metrics Metrics) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	d := &Dispatcher{
		channels:     channels,
		queue:        make(chan Notification, opts.QueueSize),
		workers:      opts.Workers,
		maxAttempts:  opts.MaxAttempts,
		retryBackoff: opts.RetryBackoff,
		sendTimeout:  opts.SendTimeout,
		logger:       logger,
		metrics:      metrics,
	}

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Submit ставит уведомление в очередь. Переходы в draft и переходы
// без смены статуса не уведомляются. При переполненной очереди
// уведомление отбрасывается с ошибкой ErrQueueFull.
func (d *Dispatcher) Submit(n Notification) error {
	if n.NewStatus == n.PreviousStatus || !isNotifiable(n) {
		return nil
	}
	select {
	case d.queue <- n:
		return nil
	default:
		d.logger.Error("[ERROR] Notify | Submit - queue full, dropping notification for booking %d", n.BookingID)
		return ErrQueueFull
	}
}

// Close останавливает прием уведомлений и дожидается, пока воркеры
// обработают очередь
func (d *Dispatcher) Close() {
	d.closeOne.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.Dispatch(context.Background(), n)
	}
}

// Dispatch синхронно рассылает уведомление по всем каналам параллельно.
// Успех - доставка хотя бы по одному каналу. Каждый канал повторяется
// с экспоненциальной задержкой; постоянные ошибки конфигурации канала
// не повторяются.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	if n.NewStatus == n.PreviousStatus || !isNotifiable(n) {
		return nil
	}
	if len(d.channels) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]error, len(d.channels))

	for i, ch := range d.channels {
		wg.Add(1)
		go func(idx int, ch Channel) {
			defer wg.Done()
			results[idx] = d.sendWithRetries(ctx, ch, n)
		}(i, ch)
	}
	wg.Wait()

	delivered := 0
	for i, err := range results {
		name := d.channels[i].Name()
		switch {
		case err == nil:
			delivered++
			d.incMetric(name, "delivered")
		case errors.Is(err, ErrChannelNotConfigured):
			d.incMetric(name, "skipped")
		default:
			d.incMetric(name, "failed")
		}
	}

	if delivered == 0 {
		d.logger.Error("[ERROR] Notify | Dispatch - booking %d status %s: no channel delivered", n.BookingID, n.NewStatus)
		return ErrAllChannelsFailed
	}

	d.logger.Info("[INFO] Notify | Dispatch - booking %d status %s: delivered via %d/%d channels",
		n.BookingID, n.NewStatus, delivered, len(d.channels))
	return nil
}

func (d *Dispatcher) sendWithRetries(ctx context.Context, ch Channel, n Notification) error {
	backoff := d.retryBackoff

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := ch.Send(sendCtx, n)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrChannelNotConfigured) {
			d.logger.Warn("[WARN] Notify | sendWithRetries - channel %s not configured for booking %d", ch.Name(), n.BookingID)
			return err
		}

		d.logger.Warn("[WARN] Notify | sendWithRetries - channel %s attempt %d/%d failed for booking %d: %v",
			ch.Name(), attempt, d.maxAttempts, n.BookingID, err)

		if attempt < d.maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("sendWithRetries - context cancelled: %w", ctx.Err())
			}
			backoff *= 2
		}
	}

	return lastErr
}

// incMetric пишет метрику, если метрики включены
func (d *Dispatcher) incMetric(channel, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.IncNotification(channel, outcome)
}

func isNotifiable(n Notification) bool {
	for _, s := range domain.NotifiableStatuses {
		if n.NewStatus == s {
			return true
		}
	}
	return false
}
