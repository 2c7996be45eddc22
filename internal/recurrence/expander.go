package recurrence

import (
	"errors"
	"strings"
	"time"

	"arenabook/internal/models"
)

// Occurrence is one concrete date produced from a recurring booking,
// tagged with the status the availability check resolved for that day.
// Occurrences are derived on demand and never persisted.
type Occurrence struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// StatusFunc resolves the status for a single occurrence date. Production
// callers pass a closure over the persisted bookings snapshot; a nil func
// tags every occurrence as pending.
type StatusFunc func(date time.Time) string

// ErrNotRecurrent is returned when Expand is invoked on a one-off booking.
var ErrNotRecurrent = errors.New("recurrence: booking is not recurrent")

// ErrInvalidPattern is returned for an unknown recurrence pattern.
var ErrInvalidPattern = errors.New("recurrence: invalid pattern")

// Expander materializes the occurrence sequence of a recurring booking.
//
// Semantics:
//   - weekly steps 7 days, biweekly 14 days, monthly one calendar month.
//   - A missing end date defaults to start + models.DefaultRecurrenceDays.
//   - An end date before the start yields an empty sequence, not an error.
//   - The weekday filter applies to weekly and biweekly patterns only; an
//     empty filter includes every step date.
//   - Monthly steps keep the anchor day of the start date and clamp to the
//     last valid day of shorter months (Jan 31 -> Feb 28/29 -> Mar 31).
//   - Dates come out strictly increasing, normalized to midnight in the
//     start date's location.
type Expander struct {
	defaultHorizonDays int
}

// NewExpander constructs an Expander with the standard 60-day fallback horizon.
func NewExpander() *Expander {
	return &Expander{defaultHorizonDays: models.DefaultRecurrenceDays}
}

// Expand produces the ordered occurrence sequence for b.
func (e *Expander) Expand(b *models.Booking, status StatusFunc) ([]Occurrence, error) {
	if !b.Recurrent {
		return nil, ErrNotRecurrent
	}

	var step func(i int) time.Time
	start := midnight(b.Date)
	switch b.RecurrencePattern {
	case models.PatternWeekly:
		step = func(i int) time.Time { return start.AddDate(0, 0, 7*i) }
	case models.PatternBiweekly:
		step = func(i int) time.Time { return start.AddDate(0, 0, 14*i) }
	case models.PatternMonthly:
		anchor := start.Day()
		step = func(i int) time.Time { return addMonthsClamped(start, i, anchor) }
	default:
		return nil, ErrInvalidPattern
	}

	end := midnight(b.RecurrenceEndDate)
	if b.RecurrenceEndDate.IsZero() {
		end = start.AddDate(0, 0, e.defaultHorizonDays)
	}

	filter := weekdaySet(b.RecurrenceDays)
	filtered := b.RecurrencePattern != models.PatternMonthly && len(filter) > 0

	occurrences := make([]Occurrence, 0)
	for i := 0; ; i++ {
		date := step(i)
		if date.After(end) {
			break
		}
		if filtered {
			if _, ok := filter[date.Weekday()]; !ok {
				continue
			}
		}
		occurrences = append(occurrences, Occurrence{Date: date, Status: resolve(status, date)})
	}
	return occurrences, nil
}

func resolve(status StatusFunc, date time.Time) string {
	if status == nil {
		return models.StatusPending
	}
	return status(date)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addMonthsClamped adds i calendar months to start, pinning the day of month
// to anchor and clamping when the target month is shorter. Plain AddDate
// would roll Jan 31 into Mar 3; the clamp keeps the sequence on month ends.
func addMonthsClamped(start time.Time, i, anchor int) time.Time {
	y, m, _ := start.Date()
	first := time.Date(y, m+time.Month(i), 1, 0, 0, 0, 0, start.Location())
	day := anchor
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, start.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// weekdaySet parses weekday names ("Monday", "tue") into a lookup set.
// Unknown names are ignored rather than rejected; the filter came from a
// form the portal already validated.
func weekdaySet(names []string) map[time.Weekday]struct{} {
	set := make(map[time.Weekday]struct{}, len(names))
	for _, name := range names {
		if wd, ok := parseWeekday(name); ok {
			set[wd] = struct{}{}
		}
	}
	return set
}

func parseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	default:
		return 0, false
	}
}
