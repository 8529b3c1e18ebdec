package proposal

import "time"

// resolveTimeOfDay returns the day with its time component set from the
// daypart preferences, using first-match priority: morning 09:00, else
// afternoon 14:00, else evening 18:00; an empty set means 14:00. Pure
// function; it does not consult existing meetings.
func resolveTimeOfDay(day time.Time, preferred []TimeOfDay) time.Time {
	hour := AfternoonHour

	has := func(want TimeOfDay) bool {
		for _, tod := range preferred {
			if tod == want {
				return true
			}
		}
		return false
	}

	switch {
	case has(Morning):
		hour = MorningHour
	case has(Afternoon):
		hour = AfternoonHour
	case has(Evening):
		hour = EveningHour
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
