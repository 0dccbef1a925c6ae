package calendar

import "time"

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// DayRange разворачивает интервал суток [start, end) на конкретную дату.
// Если end <= start, конец переносится на следующий день.
func DayRange(day Date, start, end TimeOfDay) TimeRange {
	s := day.Time().Add(time.Duration(start) * time.Second)
	return TimeRange{
		Start: s,
		End:   s.Add(time.Duration(DurationSeconds(start, end)) * time.Second),
	}
}

func (tr TimeRange) Duration() time.Duration { return tr.End.Sub(tr.Start) }

// Shift сдвигает интервал на d.
func (tr TimeRange) Shift(d time.Duration) TimeRange {
	return TimeRange{Start: tr.Start.Add(d), End: tr.End.Add(d)}
}

// Contains — inner целиком лежит внутри tr (границы включительно).
func (tr TimeRange) Contains(inner TimeRange) bool {
	return !inner.Start.Before(tr.Start) && !inner.End.After(tr.End)
}

// HasOverlap проверяет, пересекается ли newRange с existing.
// inclusive = true — касание концами считается пересечением.
func HasOverlap(
	newRange TimeRange,
	existing []TimeRange,
	inclusive bool,
) (bool, []TimeRange) {
	var conflicts []TimeRange

	for _, tr := range existing {
		if rangesOverlap(newRange, tr, inclusive) {
			conflicts = append(conflicts, tr)
		}
	}

	return len(conflicts) > 0, conflicts
}

func rangesOverlap(a, b TimeRange, inclusive bool) bool {
	if inclusive {
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}

	// Полуоткрытые интервалы [Start, End)
	// пересекаются, если a.Start < b.End && b.Start < a.End
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// PlaceWithin раскладывает интервал суток inner внутри outer, развёрнутого на ту же дату:
// если inner начинается раньше outer по часам (перерыв ночной смены после полуночи),
// он переносится на следующие сутки.
func PlaceWithin(outer TimeRange, day Date, start, end TimeOfDay) TimeRange {
	inner := DayRange(day, start, end)
	if inner.Start.Before(outer.Start) {
		inner = inner.Shift(24 * time.Hour)
	}
	return inner
}
