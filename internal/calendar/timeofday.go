package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

const SecondsPerDay = 24 * 60 * 60

var secondsPerHour = decimal.NewFromInt(3600)

// TimeOfDay — время суток в секундах от полуночи, диапазон [0, 86400).
type TimeOfDay int

func NewTimeOfDay(h, m, s int) (TimeOfDay, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidTimeOfDay, h, m, s)
	}
	return TimeOfDay(h*3600 + m*60 + s), nil
}

// MustTimeOfDay разбирает HH:MM[:SS] и паникует при ошибке. Для литералов в тестах и сидах.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTOD(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay разбирает строку HH:MM[:SS] в (часы, минуты, секунды).
func ParseTimeOfDay(s string) (h, m, sec int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		nums[i] = n
	}
	if _, err := NewTimeOfDay(nums[0], nums[1], nums[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return nums[0], nums[1], nums[2], nil
}

// ParseTOD — то же, что ParseTimeOfDay, но сразу в TimeOfDay.
func ParseTOD(s string) (TimeOfDay, error) {
	h, m, sec, err := ParseTimeOfDay(s)
	if err != nil {
		return 0, err
	}
	return NewTimeOfDay(h, m, sec)
}

func (t TimeOfDay) Clock() (h, m, s int) {
	v := int(t)
	return v / 3600, (v % 3600) / 60, v % 60
}

func (t TimeOfDay) Seconds() int { return int(t) }

func (t TimeOfDay) String() string {
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// DurationSeconds считает длительность интервала [start, end).
// Если end <= start, интервал заканчивается на следующий день:
// (24h - start) + end.
func DurationSeconds(start, end TimeOfDay) int {
	if end <= start {
		return SecondsPerDay - int(start) + int(end)
	}
	return int(end - start)
}

// DurationHours — DurationSeconds в дробных часах.
func DurationHours(start, end TimeOfDay) decimal.Decimal {
	return HoursFromSeconds(DurationSeconds(start, end))
}

func HoursFromSeconds(secs int) decimal.Decimal {
	return decimal.NewFromInt(int64(secs)).Div(secondsPerHour)
}

// IntervalOverlap возвращает пересечение двух интервалов суток в часах.
// Каждый интервал сначала канонизируется (конец <= начала означает переход через полночь),
// затем b сравнивается с a с учётом соседних суток, чтобы ночной интервал
// пересекался с утренним.
func IntervalOverlap(aStart, aEnd, bStart, bEnd TimeOfDay) decimal.Decimal {
	return HoursFromSeconds(overlapSeconds(aStart, aEnd, bStart, bEnd))
}

func overlapSeconds(aStart, aEnd, bStart, bEnd TimeOfDay) int {
	as := int(aStart)
	ae := as + DurationSeconds(aStart, aEnd)
	bs := int(bStart)
	be := bs + DurationSeconds(bStart, bEnd)

	total := 0
	for _, shift := range []int{-SecondsPerDay, 0, SecondsPerDay} {
		lo := max(as, bs+shift)
		hi := min(ae, be+shift)
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTOD(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
