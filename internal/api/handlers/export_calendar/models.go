package export_calendar

import (
	"fmt"
	"strings"

	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings/models"
)

// icsTimeLayout формат плавающего локального времени iCalendar (RFC 5545)
const icsTimeLayout = "20060102T150405"

// renderICS собирает файл VCALENDAR с одним событием VEVENT.
// Времена плавающие: визит привязан к локальному времени бизнеса.
func renderICS(event *models.CalendarEvent) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//BMS//BookingEngine//RU\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%s\r\n", escapeICS(event.PublicRef))
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", event.CreatedAt.UTC().Format(icsTimeLayout)+"Z")
	fmt.Fprintf(&b, "DTSTART:%s\r\n", event.StartsAt.Format(icsTimeLayout))
	fmt.Fprintf(&b, "DTEND:%s\r\n", event.EndsAt.Format(icsTimeLayout))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", escapeICS(event.ServiceName+" - "+event.BusinessName))
	fmt.Fprintf(&b, "LOCATION:%s\r\n", escapeICS(event.BusinessName))
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

// escapeICS экранирует текстовые значения по RFC 5545
func escapeICS(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
		"\r", "",
	)
	return r.Replace(s)
}
