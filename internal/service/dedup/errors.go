package dedup

import "errors"

var (
	// ErrDuplicateRequest возвращается, когда такая же заявка уже была
	// создана в пределах окна защиты от дублей
	ErrDuplicateRequest = errors.New("dedup service: duplicate request")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("dedup service: internal error")
)
