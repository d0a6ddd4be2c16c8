// The `ical` package serializes events into an iCalendar feed.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Only dated events are written, each as an all-day VEVENT.
// - Each audience tag becomes its own CATEGORIES property, the start time is kept in DESCRIPTION
//   since it is free text.
// - Escaping and line folding are left to github.com/arran4/golang-ical.
package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"eventboard/src-server/model"

	ics "github.com/arran4/golang-ical"
)

const prodID = "-//eventboard//events//EN"

// UID returns the globally unique id an event is published under.
func UID(e *model.Event) string {
	return e.ID + "@eventboard"
}

// NewCalendar builds a calendar holding one VEVENT per dated event, in the
// order given. stamp is used as DTSTAMP.
func NewCalendar(name string, events []model.Event, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for i := range events {
		e := &events[i]
		start, err := time.Parse(model.EventDateLayout, e.Date)
		if err != nil {
			continue
		}

		vevent := cal.AddEvent(UID(e))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
		vevent.SetSummary(e.Title)
		if e.Address != "" {
			vevent.SetLocation(strings.ReplaceAll(e.Address, "\n", ", "))
		}
		if e.TimeFrom != "" {
			vevent.SetDescription("Starts at " + e.TimeFrom)
		}
		if link := eventURL(e); link != "" {
			vevent.SetURL(link)
		}
		// one property per tag, a joined list would get its commas escaped
		for _, tag := range e.AudienceTags() {
			vevent.AddProperty(ics.ComponentPropertyCategories, tag)
		}
	}
	return cal
}

// Write serializes NewCalendar(name, events, stamp) to w.
func Write(w io.Writer, name string, events []model.Event, stamp time.Time) error {
	if err := NewCalendar(name, events, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// the register link wins, it's the one people act on
func eventURL(e *model.Event) string {
	if e.RegisterLink != "" {
		return e.RegisterLink
	}
	return e.MoreInfoLink
}
