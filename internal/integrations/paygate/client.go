// Package paygate реализует клиент платежного шлюза: создание заказов
// и проверку подписей платежей и вебхуков. Для движка бронирований шлюз -
// внешний коллаборатор; учетные данные приходят из данных бизнеса и для
// клиента непрозрачны.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент платежного шлюза
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateOrder создает заказ в шлюзе от имени бизнеса.
// keyID/keySecret - учетные данные конкретного бизнеса (basic auth).
func (c *Client) CreateOrder(ctx context.Context, keyID, keySecret string, orderReq *CreateOrderRequest) (*Order, error) {
	url := fmt.Sprintf("%s/v1/orders", c.baseURL)

	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal order request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(keyID, keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		var gatewayErr ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&gatewayErr); err == nil && gatewayErr.Error.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrOrderCreateFailed, gatewayErr.Error.Code, gatewayErr.Error.Description)
		}
		return nil, fmt.Errorf("%w: status code %d", ErrOrderCreateFailed, resp.StatusCode)
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("CreateOrder: created gateway order id=%s, amount=%d %s", order.ID, order.Amount, order.Currency)
	return &order, nil
}
