package event

import (
	"fmt"
	"math"
	"time"

	"eventboard/src-server/model"
)

type Status string

const (
	STATUS_UNSET   = Status("unset")
	STATUS_ACTIVE  = Status("active")
	STATUS_EXPIRED = Status("expired")
)

type Proximity string

const (
	PROXIMITY_NONE     = Proximity("")
	PROXIMITY_TODAY    = Proximity("today")
	PROXIMITY_TOMORROW = Proximity("tomorrow")
	PROXIMITY_SOON     = Proximity("soon")
)

// days ahead that still count as "soon"
const soonDays = 7

type Classification struct {
	Status    Status
	Proximity Proximity
	// whole days from now until the event date, rounded up; 0 when unset
	DaysUntil int
}

// Classify is a pure function of the event date (local midnight, nil when
// unset) and the current moment.
//
// An event expires once its calendar date is before today's, so an event
// dated today stays active all day long. The day count is measured from the
// current moment, which makes today's event land on 0 and tomorrow's on 1.
func Classify(date *time.Time, now time.Time) Classification {
	if date == nil {
		return Classification{Status: STATUS_UNSET}
	}

	midnight := Midnight(*date)
	days := int(math.Ceil(midnight.Sub(now).Hours() / 24))

	if midnight.Before(Midnight(now.In(midnight.Location()))) {
		return Classification{Status: STATUS_EXPIRED, DaysUntil: days}
	}

	c := Classification{Status: STATUS_ACTIVE, DaysUntil: days}
	switch {
	case days <= 0:
		c.Proximity = PROXIMITY_TODAY
	case days == 1:
		c.Proximity = PROXIMITY_TOMORROW
	case days <= soonDays:
		c.Proximity = PROXIMITY_SOON
	}
	return c
}

// Midnight truncates t to the start of its day in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate reads a stored event date as local midnight in loc. A blank date
// is not an error, it just has no value.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	date, err := time.ParseInLocation(model.EventDateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("ParseDate: %w", err)
	}
	return &date, nil
}

// ClassifyEvent is Classify for a stored record. Malformed dates are treated
// as unset.
func ClassifyEvent(e *model.Event, now time.Time) Classification {
	date, err := ParseDate(e.Date, now.Location())
	if err != nil {
		return Classification{Status: STATUS_UNSET}
	}
	return Classify(date, now)
}
