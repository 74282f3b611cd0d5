package paygate

import "errors"

var (
	// ErrOrderCreateFailed возвращается, когда шлюз отклонил создание заказа
	ErrOrderCreateFailed = errors.New("paygate client: order creation failed")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paygate client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("paygate client: invalid response")
)
