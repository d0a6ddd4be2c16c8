package admin

import (
	"time"

	"eventboard/src-server/event"
	"eventboard/src-server/model"
)

// Column is one of the extra columns of the admin event list.
type Column int

const (
	COLUMN_EVENT_DATE Column = iota
	COLUMN_EVENT_STATUS
)

var Columns = []Column{COLUMN_EVENT_DATE, COLUMN_EVENT_STATUS}

const emptyCell = "—"

// Cell is a rendered column value. Class is blank when the cell needs no
// styling.
type Cell struct {
	Text  string
	Class string
}

func (c Column) Key() string {
	switch c {
	case COLUMN_EVENT_DATE:
		return string(model.EVENT_LIST_ORDER_BY_DATE)
	case COLUMN_EVENT_STATUS:
		return string(model.EVENT_LIST_ORDER_BY_STATUS)
	}
	return ""
}

func (c Column) Title() string {
	switch c {
	case COLUMN_EVENT_DATE:
		return "Event Date"
	case COLUMN_EVENT_STATUS:
		return "Status"
	}
	return ""
}

func (c Column) Format(e *model.Event, now time.Time) Cell {
	switch c {
	case COLUMN_EVENT_DATE:
		return formatDateCell(e)
	case COLUMN_EVENT_STATUS:
		return formatStatusCell(e, now)
	}
	return Cell{Text: emptyCell}
}

func formatDateCell(e *model.Event) Cell {
	date, err := event.ParseDate(e.Date, time.UTC)
	if err != nil || date == nil {
		return Cell{Text: emptyCell}
	}
	return Cell{Text: date.Format("January 2, 2006")}
}

func formatStatusCell(e *model.Event, now time.Time) Cell {
	switch event.ClassifyEvent(e, now).Status {
	case event.STATUS_ACTIVE:
		return Cell{Text: "ACTIVE", Class: "active"}
	case event.STATUS_EXPIRED:
		return Cell{Text: "EXPIRED", Class: "expired"}
	}
	return Cell{Text: emptyCell}
}

// StatusBox is the side box of the edit form.
type StatusBox struct {
	Label string
	Class string
	// only set for active events
	DaysRemaining *int
}

func NewStatusBox(e *model.Event, now time.Time) StatusBox {
	c := event.ClassifyEvent(e, now)
	switch c.Status {
	case event.STATUS_ACTIVE:
		days := c.DaysUntil
		return StatusBox{Label: "ACTIVE", Class: "status-active", DaysRemaining: &days}
	case event.STATUS_EXPIRED:
		return StatusBox{Label: "EXPIRED", Class: "status-expired"}
	}
	return StatusBox{Label: "Not Set", Class: "status-neutral"}
}
