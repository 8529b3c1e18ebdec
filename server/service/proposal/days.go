package proposal

import "time"

// availableDays returns the candidate calendar days from tomorrow through
// tomorrow+horizon-1 in the given location, excluding unavailable weekdays
// (0 = Sunday .. 6 = Saturday). Midnight-normalized, ascending.
func availableDays(now time.Time, horizon int, unavailableWeekdays []int, loc *time.Location) []time.Time {
	unavailable := make(map[int]bool, len(unavailableWeekdays))
	for _, wd := range unavailableWeekdays {
		unavailable[wd] = true
	}

	local := now.In(loc)
	days := make([]time.Time, 0, horizon)
	for i := 1; i <= horizon; i++ {
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, i)
		if unavailable[int(day.Weekday())] {
			continue
		}
		days = append(days, day)
	}
	return days
}

// fallbackDays returns tomorrow and the day after, ignoring weekday
// preferences entirely. Used when filtering removes every day in the
// horizon; product has accepted the preference violation over returning
// nothing.
func fallbackDays(now time.Time, loc *time.Location) []time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	days := make([]time.Time, 0, FallbackHorizonDays)
	for i := 1; i <= FallbackHorizonDays; i++ {
		days = append(days, midnight.AddDate(0, 0, i))
	}
	return days
}

// selectDays picks count days from the ascending availableDays list
// according to the distribution policy. Returns min(count, len) days,
// always in ascending order.
func selectDays(days []time.Time, count int, distribution Distribution) []time.Time {
	if len(days) <= count {
		return days
	}

	if distribution == Condensed {
		if run := firstConsecutiveRun(days, count); run != nil {
			return run
		}
		return days[:count]
	}

	// Spread: evenly-spaced index sampling over the filtered list. This can
	// cluster unevenly in calendar time when unavailable weekdays are
	// non-contiguous; kept as-is pending a product decision.
	step := len(days) / count
	selected := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		selected = append(selected, days[i*step])
	}
	return selected
}

// firstConsecutiveRun returns the first run of count consecutive calendar
// days within the ascending list, or nil when no such run exists.
func firstConsecutiveRun(days []time.Time, count int) []time.Time {
	for i := 0; i+count <= len(days); i++ {
		consecutive := true
		for j := 1; j < count; j++ {
			if !days[i+j].Equal(days[i+j-1].AddDate(0, 0, 1)) {
				consecutive = false
				break
			}
		}
		if consecutive {
			return days[i : i+count]
		}
	}
	return nil
}
