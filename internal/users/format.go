package users

import (
	"fmt"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
)

var ptBRMonths = [...]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// FormatDate renders t the way the listing shows timestamps, e.g. "15 de jan. de 2025, 10:30".
// The wall clock is taken in loc. A nil loc keeps t's own location, which
// for timestamps stored without an offset is UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "Never"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), ptBRMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// FormatOptionalDate renders a nullable timestamp; nil means "Never".
func FormatOptionalDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "Never"
	}
	return FormatDate(*t, loc)
}

// Row is one rendered line of the users table.
type Row struct {
	domain.UserView
	Status    string
	Created   string
	LastLogin string
}

// Page is the template payload for the users listing.
type Page struct {
	Rows       []Row
	CountLabel string
}

// Empty reports whether the "No users found." state should be shown.
func (p Page) Empty() bool {
	return len(p.Rows) == 0
}

// BuildPage projects records for display with dates shown in loc (nil keeps
// the stored location). Password hashes never reach the page.
func BuildPage(records []domain.UserRecord, loc *time.Location) Page {
	rows := make([]Row, 0, len(records))
	for i := range records {
		view := records[i].View()
		status := "Inactive"
		if view.IsActive {
			status = "Active"
		}
		rows = append(rows, Row{
			UserView:  view,
			Status:    status,
			Created:   FormatDate(view.CreatedAt, loc),
			LastLogin: FormatOptionalDate(view.LastLoginAt, loc),
		})
	}
	return Page{
		Rows:       rows,
		CountLabel: fmt.Sprintf("%d user(s)", len(rows)),
	}
}
