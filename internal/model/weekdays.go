package model

import (
	"fmt"
	"strings"
	"time"
)

const WorkDays = 5

var labelDateLayouts = []string{
	"02.01.2006", "2.1.2006", "02.01.06", "2.1.06",
	"02/01/2006", "2/1/2006",
}

var labelShortLayouts = []string{"02.01", "2.1", "02/01", "2/1"}

// WeekLabel is a parsed sheet title such as "03.10.2016-07.10.2016 - diet".
type WeekLabel struct {
	Raw      string
	Range    string
	MenuType MenuType
	Days     WeekDays
}

// WeekDays holds the Monday..Friday dates of one order week.
type WeekDays struct {
	monday time.Time
}

func ParseWeekLabel(raw string) (WeekLabel, error) {
	rng, typ := SplitWeekLabel(raw)
	days, err := ParseWeekDays(rng)
	if err != nil {
		return WeekLabel{}, err
	}
	return WeekLabel{Raw: raw, Range: rng, MenuType: typ, Days: days}, nil
}

// SplitWeekLabel strips the optional " - diet" suffix and reports the menu
// type it selects.
func SplitWeekLabel(raw string) (string, MenuType) {
	label := strings.ToLower(strings.TrimSpace(raw))
	typ := MenuTypeRegular
	if strings.Contains(label, "- diet") {
		typ = MenuTypeDiet
		label = strings.ReplaceAll(label, "- diet", "")
	}
	return strings.TrimSpace(label), typ
}

func ParseWeekDays(dateRange string) (WeekDays, error) {
	parts := strings.Split(dateRange, "-")
	if len(parts) != 2 {
		return WeekDays{}, fmt.Errorf("%w: week range %q must contain two dates", ErrParse, dateRange)
	}
	end, err := parseLabelDate(strings.TrimSpace(parts[1]), labelDateLayouts)
	if err != nil {
		return WeekDays{}, fmt.Errorf("%w: week end %q", ErrParse, parts[1])
	}
	start, err := parseLabelDate(strings.TrimSpace(parts[0]), labelDateLayouts)
	if err != nil {
		short, serr := parseLabelDate(strings.TrimSpace(parts[0]), labelShortLayouts)
		if serr != nil {
			return WeekDays{}, fmt.Errorf("%w: week start %q", ErrParse, parts[0])
		}
		year := end.Year()
		if short.Month() > end.Month() {
			year--
		}
		start = time.Date(year, short.Month(), short.Day(), 0, 0, 0, 0, time.UTC)
	}

	wd := start.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return WeekDays{}, fmt.Errorf("%w: week %q starts on %s", ErrParse, dateRange, wd)
	}
	monday := start.AddDate(0, 0, -int(wd-time.Monday))
	if end.Before(start) || end.After(monday.AddDate(0, 0, 6)) {
		return WeekDays{}, fmt.Errorf("%w: week %q does not span a single week", ErrParse, dateRange)
	}
	return WeekDays{monday: monday}, nil
}

func parseLabelDate(s string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (w WeekDays) First() time.Time { return w.monday }

func (w WeekDays) Last() time.Time { return w.monday.AddDate(0, 0, WorkDays-1) }

// At returns the date of weekday i, Monday being 0. It panics outside [0, 4].
func (w WeekDays) At(i int) time.Time {
	if i < 0 || i >= WorkDays {
		panic(fmt.Sprintf("weekday index %d out of range", i))
	}
	return w.monday.AddDate(0, 0, i)
}

// Index is the inverse of At; ok is false for weekend or out-of-week dates.
func (w WeekDays) Index(date time.Time) (int, bool) {
	for i := range WorkDays {
		if w.At(i).Format(DateLayout) == date.Format(DateLayout) {
			return i, true
		}
	}
	return 0, false
}
