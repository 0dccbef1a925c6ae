package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

var ErrInvalidWeekday = errors.New("invalid weekday")

// WeekdaySet — подмножество ISO-дней недели {1..7}; день d хранится в бите d-1.
// В БД пишется компактной строкой "1,2,3,4,5".
type WeekdaySet uint8

// Weekdays — понедельник–пятница.
const Weekdays WeekdaySet = 0b0011111

func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if d < 1 || d > 7 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		s |= 1 << (d - 1)
	}
	return s, nil
}

// ParseWeekdaySet разбирает "1,2,3". Пустая строка — пустое множество.
// Повторы допускаются, порядок не важен.
func ParseWeekdaySet(raw string) (WeekdaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	var days []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, part)
		}
		days = append(days, d)
	}
	return NewWeekdaySet(days...)
}

func (s WeekdaySet) Contains(day int) bool {
	if day < 1 || day > 7 {
		return false
	}
	return s&(1<<(day-1)) != 0
}

func (s WeekdaySet) IsEmpty() bool { return s&0x7f == 0 }

func (s WeekdaySet) Len() int { return bits.OnesCount8(uint8(s & 0x7f)) }

// Days возвращает дни по возрастанию.
func (s WeekdaySet) Days() []int {
	out := make([]int, 0, s.Len())
	for d := 1; d <= 7; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// String — каноническая форма, по ней же проверяется уникальность смен.
func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// В JSON множество — массив дней: [1,2,3,4,5].
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var days []int
	if err := json.Unmarshal(b, &days); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeekday, err)
	}
	v, err := NewWeekdaySet(days...)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
