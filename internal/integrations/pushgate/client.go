// Package pushgate реализует клиент сервиса шаблонных push-сообщений
// (WhatsApp/SMS-подобный канал, привязанный к номеру телефона).
// Канал настраивается на стороне сервиса для каждого бизнеса отдельно.
package pushgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrChannelNotConfigured возвращается, когда push-канал не настроен
	// для бизнеса; ошибка постоянная, повторы бессмысленны
	ErrChannelNotConfigured = errors.New("pushgate client: channel not configured")

	// ErrSendFailed возвращается при временной ошибке отправки
	ErrSendFailed = errors.New("pushgate client: send failed")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("pushgate client: internal error")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SendPushRequest запрос на отправку шаблонного сообщения
type SendPushRequest struct {
	BusinessID int64  `json:"businessId"`
	To         string `json:"to"` // Номер телефона получателя
	Message    string `json:"message"`
}

// SendResult результат отправки
type SendResult struct {
	ID string `json:"id"`
}

// Client клиент push-сервиса
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента push-сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendTemplatedPush отправляет шаблонное сообщение на номер телефона.
// 4xx трактуется как постоянная ошибка конфигурации канала (не повторять),
// 5xx и сетевые ошибки - как временные.
func (c *Client) SendTemplatedPush(ctx context.Context, businessID int64, to, message string) (*SendResult, error) {
	url := fmt.Sprintf("%s/v1/messages", c.baseURL)

	body, err := json.Marshal(&SendPushRequest{
		BusinessID: businessID,
		To:         to,
		Message:    message,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		// Продолжаем обработку
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status code %d: %s", ErrChannelNotConfigured, resp.StatusCode, string(respBody))
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status code %d: %s", ErrSendFailed, resp.StatusCode, string(respBody))
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrSendFailed, err)
	}

	return &result, nil
}
