// Package mailer реализует клиент внешнего email-сервиса.
// Для движка это непрозрачная функция send(to, content); настройка
// отправителя и ключей - ответственность самого сервиса.
package mailer

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
	// ErrChannelNotConfigured возвращается, когда email-канал не настроен
	// для бизнеса; ошибка постоянная, повторы бессмысленны
	ErrChannelNotConfigured = errors.New("mailer client: channel not configured")

	// ErrSendFailed возвращается при временной ошибке отправки
	ErrSendFailed = errors.New("mailer client: send failed")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("mailer client: internal error")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SendEmailRequest запрос на отправку письма
type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendResult результат отправки
type SendResult struct {
	ID string `json:"id"`
}

// Client клиент email-сервиса
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента email-сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendEmail отправляет письмо через внешний сервис.
// 4xx трактуется как постоянная ошибка конфигурации канала (не повторять),
// 5xx и сетевые ошибки - как временные.
func (c *Client) SendEmail(ctx context.Context, sendReq *SendEmailRequest) (*SendResult, error) {
	url := fmt.Sprintf("%s/v1/emails", c.baseURL)

	body, err := json.Marshal(sendReq)
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
