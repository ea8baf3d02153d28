// Package week computes the canonical Monday-start work week.
package week

import "time"

// Day is one slot of the current week.
type Day struct {
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	ShortDate  string    `json:"short_date"`
	DisplayKey string    `json:"display_key"`
}

// Week holds the seven days Monday through Sunday.
type Week [7]Day

// Compute returns the week containing now. Day names come from the locale;
// dates are midnight in now's location.
func Compute(now time.Time, locale Locale) Week {
	wd := int(now.Weekday())
	offset := 1 - wd
	if now.Weekday() == time.Sunday {
		offset = -6
	}
	monday := DateOnly(now).AddDate(0, 0, offset)

	names := locale.Strings().DayNames
	var w Week
	for i := range w {
		d := monday.AddDate(0, 0, i)
		w[i] = Day{
			Name:       names[i],
			Date:       d,
			ShortDate:  locale.ShortDate(d),
			DisplayKey: names[i],
		}
	}
	return w
}

// DateOnly zeroes the time of day, keeping t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (w Week) Start() time.Time {
	return w[0].Date
}

func (w Week) Location() *time.Location {
	return w[0].Date.Location()
}

// DateOf projects t onto a calendar day in the week's location.
func (w Week) DateOf(t time.Time) time.Time {
	return DateOnly(t.In(w.Location()))
}

// Find returns the weekday slot whose date matches t's calendar day.
func (w Week) Find(t time.Time) (Day, bool) {
	d := w.DateOf(t)
	for _, day := range w {
		if day.Date.Equal(d) {
			return day, true
		}
	}
	return Day{}, false
}

// ByKey looks a weekday up by its display key.
func (w Week) ByKey(key string) (Day, bool) {
	for _, day := range w {
		if day.DisplayKey == key {
			return day, true
		}
	}
	return Day{}, false
}
