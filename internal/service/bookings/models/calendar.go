package models

import "time"

// CalendarEvent данные бронирования для экспорта в формате iCalendar.
// Времена плавающие (без зоны): бронирование привязано к локальному
// времени бизнеса.
type CalendarEvent struct {
	PublicRef    string    // UID события
	BusinessName string    // Название бизнеса
	ServiceName  string    // Название услуги
	StartsAt     time.Time // Начало визита
	EndsAt       time.Time // Конец визита
	CreatedAt    time.Time // Время создания бронирования
}
