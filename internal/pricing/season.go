package pricing

import (
	"time"

	"github.com/tripdesk/agency-api/internal/domain"
)

// SeasonCalendar resolves the rate tier from the month a trip starts in.
// Months in neither list use the regular season rate.
type SeasonCalendar struct {
	PeakMonths      []time.Month
	OffSeasonMonths []time.Month
}

// NewSeasonCalendar builds a calendar from month numbers (1-12)
func NewSeasonCalendar(peak, off []int) SeasonCalendar {
	return SeasonCalendar{PeakMonths: toMonths(peak), OffSeasonMonths: toMonths(off)}
}

func toMonths(values []int) []time.Month {
	months := make([]time.Month, 0, len(values))
	for _, v := range values {
		if v >= 1 && v <= 12 {
			months = append(months, time.Month(v))
		}
	}
	return months
}

// ForDate returns the tier for a trip starting on date
func (c SeasonCalendar) ForDate(date time.Time) domain.Season {
	m := date.Month()
	for _, p := range c.PeakMonths {
		if p == m {
			return domain.SeasonPeak
		}
	}
	for _, o := range c.OffSeasonMonths {
		if o == m {
			return domain.SeasonOffSeason
		}
	}
	return domain.SeasonRegular
}

// Resolve picks the season for an itinerary: an explicit valid choice
// wins, then the calendar when a start date is known, then the regular tier.
func (c SeasonCalendar) Resolve(explicit domain.Season, startDate string) domain.Season {
	if explicit.IsValid() {
		return explicit
	}
	if startDate != "" {
		if d, err := ParseDate(startDate); err == nil {
			return c.ForDate(d)
		}
	}
	return domain.SeasonRegular
}
