package event

import (
	"strings"
	"time"

	"eventboard/src-server/model"
)

type Window string

const (
	WINDOW_UPCOMING = Window("upcoming")
	WINDOW_PAST     = Window("past")
)

func (w Window) IsPast() bool {
	return w == WINDOW_PAST
}

// AudienceAll disables the audience predicate.
const AudienceAll = "all"

type DateCompare string

const (
	DATE_COMPARE_ON_OR_AFTER = DateCompare(">=")
	DATE_COMPARE_BEFORE      = DateCompare("<")
)

type SortOrder string

const (
	SORT_ASC  = SortOrder("ASC")
	SORT_DESC = SortOrder("DESC")
)

// Query describes what to fetch from the event store. It is only a
// description, Store implementations run it.
type Query struct {
	Window      Window
	DateCompare DateCompare
	// YYYY-MM-DD
	DateValue string
	// blank when every audience matches
	Audience string
	Order    SortOrder
	// 0 means no cap
	Limit int
}

// BuildQuery turns a filter into a store query. The past window is never
// capped, whatever limit is asked for.
func BuildQuery(window Window, audience string, limit int, today time.Time) Query {
	q := Query{
		Window:    window,
		DateValue: today.Format(model.EventDateLayout),
	}

	switch window {
	case WINDOW_PAST:
		q.DateCompare = DATE_COMPARE_BEFORE
		q.Order = SORT_DESC
	default:
		q.Window = WINDOW_UPCOMING
		q.DateCompare = DATE_COMPARE_ON_OR_AFTER
		q.Order = SORT_ASC
		if limit > 0 {
			q.Limit = limit
		}
	}

	if audience = strings.TrimSpace(audience); audience != "" && audience != AudienceAll {
		q.Audience = audience
	}

	return q
}
