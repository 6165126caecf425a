package workorder

import (
	"sort"
	"time"

	"factory-erp/internal/storage"
)

const (
	DefaultBreakStart = "12:00"
	DefaultBreakEnd   = "12:30"

	clockLayout = "15:04"
)

type interval struct {
	start time.Time
	end   time.Time
}

// ComputeEffectiveCycleSeconds возвращает длительность цикла между IN и OUT
// за вычетом ежедневного перерыва и ручных пауз. Открытая пауза тянется до outAt.
// Результат не меньше minSeconds.
func ComputeEffectiveCycleSeconds(
	inAt, outAt time.Time,
	breakStart, breakEnd string,
	pauses []storage.WorkOrderPauseWindow,
	minSeconds int,
) int {
	elapsed := outAt.Sub(inAt)
	if elapsed <= 0 {
		return minSeconds
	}

	windows := dailyBreaks(inAt, outAt, breakStart, breakEnd)
	for _, p := range pauses {
		end := outAt
		if p.EndAt != nil {
			end = *p.EndAt
		}
		windows = append(windows, interval{start: p.StartAt, end: end})
	}

	effective := elapsed - overlap(windows, inAt, outAt)
	seconds := int(effective / time.Second)
	if seconds < minSeconds {
		return minSeconds
	}
	return seconds
}

// dailyBreaks строит интервалы перерыва на каждый календарный день сессии
// в часовом поясе inAt.
func dailyBreaks(inAt, outAt time.Time, breakStart, breakEnd string) []interval {
	if breakStart == "" {
		breakStart = DefaultBreakStart
	}
	if breakEnd == "" {
		breakEnd = DefaultBreakEnd
	}

	from, err := time.Parse(clockLayout, breakStart)
	if err != nil {
		return nil
	}
	to, err := time.Parse(clockLayout, breakEnd)
	if err != nil {
		return nil
	}

	loc := inAt.Location()
	first := startOfDay(inAt)
	last := startOfDay(outAt.In(loc))

	var out []interval
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		start := time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, loc)
		end := time.Date(day.Year(), day.Month(), day.Day(), to.Hour(), to.Minute(), 0, 0, loc)
		if !end.After(start) {
			continue
		}
		out = append(out, interval{start: start, end: end})
	}

	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// overlap склеивает интервалы и считает их суммарное пересечение с [from, to].
func overlap(windows []interval, from, to time.Time) time.Duration {
	clamped := make([]interval, 0, len(windows))
	for _, w := range windows {
		start, end := w.start, w.end
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			clamped = append(clamped, interval{start: start, end: end})
		}
	}
	if len(clamped) == 0 {
		return 0
	}

	sort.Slice(clamped, func(i, j int) bool {
		return clamped[i].start.Before(clamped[j].start)
	})

	var total time.Duration
	cur := clamped[0]
	for _, w := range clamped[1:] {
		if !w.start.After(cur.end) {
			if w.end.After(cur.end) {
				cur.end = w.end
			}
			continue
		}
		total += cur.end.Sub(cur.start)
		cur = w
	}
	total += cur.end.Sub(cur.start)

	return total
}
