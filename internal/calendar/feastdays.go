package calendar

import (
	"strings"
	"time"
)

// FeastDays returns labels for windows that fall on Advent Sundays or
// well-known December feast days, keyed by day of month.
func FeastDays(year int) map[int]string {
	labels := make(map[int][]string)

	for i, sunday := range AdventSundays(year) {
		if sunday.Month() == time.December && ValidDay(sunday.Day()) {
			labels[sunday.Day()] = append(labels[sunday.Day()], adventNames[i])
		}
	}

	// Fixed feast days
	labels[4] = append(labels[4], "St. Barbara")
	labels[6] = append(labels[6], "St. Nicholas")
	labels[13] = append(labels[13], "St. Lucia")
	labels[24] = append(labels[24], "Christmas Eve")

	feasts := make(map[int]string, len(labels))
	for day, l := range labels {
		feasts[day] = strings.Join(l, " · ")
	}
	return feasts
}

var adventNames = [4]string{"1st Advent", "2nd Advent", "3rd Advent", "4th Advent"}

// AdventSundays returns the four Sundays before Christmas Day, earliest first.
// The first one may fall in late November.
func AdventSundays(year int) [4]time.Time {
	// Noon UTC keeps AddDate away from DST shifts while stepping back by weeks
	christmas := time.Date(year, time.December, 25, 12, 0, 0, 0, time.UTC)

	back := int(christmas.Weekday())
	if back == 0 {
		back = 7
	}
	fourth := christmas.AddDate(0, 0, -back)

	var sundays [4]time.Time
	for i := 0; i < 4; i++ {
		sundays[i] = fourth.AddDate(0, 0, -7*(3-i))
	}
	return sundays
}
