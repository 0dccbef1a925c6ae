package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("invalid date range")
)

const dateLayout = "2006-01-02"

// Date — календарная дата без времени в календаре линии.
// Хранится как полночь UTC, поэтому переходы на летнее время не влияют
// на арифметику: в сутках всегда 24 часа, в часе — 60 минут.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf берёт год/месяц/день из t в его собственной таймзоне.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate разбирает ISO-дату вида YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time возвращает полночь UTC этой даты.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// DaysUntil возвращает o - d в днях.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t) / (24 * time.Hour))
}

// ISOWeekday: 1 = понедельник … 7 = воскресенье.
func (d Date) ISOWeekday() int {
	wd := int(d.t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func ISOWeekday(d Date) int { return d.ISOWeekday() }

// WeekStartOf возвращает первый день недели, содержащей d,
// если неделя начинается с ISO-дня weekStart (1..7).
func WeekStartOf(d Date, weekStart int) Date {
	if weekStart < 1 || weekStart > 7 {
		weekStart = 1
	}
	offset := (d.ISOWeekday() - weekStart + 7) % 7
	return d.AddDays(-offset)
}

// MondayOf — якорь недели для диапазонных запросов.
func MondayOf(d Date) Date { return WeekStartOf(d, 1) }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange — включительный интервал дат [From, To].
type DateRange struct {
	From Date
	To   Date
}

func NewDateRange(from, to Date) (DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return DateRange{}, fmt.Errorf("%w: missing bound", ErrInvalidDateRange)
	}
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, from, to)
	}
	return DateRange{From: from, To: to}, nil
}

// Span — end - start в днях; однодневный диапазон имеет span 0.
func (r DateRange) Span() int { return r.From.DaysUntil(r.To) }

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

func (r DateRange) Overlaps(o DateRange) bool {
	return !r.From.After(o.To) && !o.From.After(r.To)
}
