package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type EventListOrderBy string

const (
	EVENT_LIST_ORDER_BY_CREATED = EventListOrderBy("")
	EVENT_LIST_ORDER_BY_DATE    = EventListOrderBy("event_date")
	EVENT_LIST_ORDER_BY_STATUS  = EventListOrderBy("event_status")
)

type EventListOptions struct {
	OrderBy EventListOrderBy
	Desc    bool
	// YYYY-MM-DD, the boundary between active and expired when sorting by status
	Today string
}

// ListEvents backs the admin list view. Events without a date always go last.
func ListEvents(ctx context.Context, db bun.IDB, opts EventListOptions) ([]Event, error) {
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}

	eventModels := make([]Event, 0)
	q := db.NewSelect().
		Model(&eventModels).
		OrderExpr("(date = '') ASC")
	switch opts.OrderBy {
	case EVENT_LIST_ORDER_BY_DATE:
		q = q.OrderExpr("date " + direction)
	case EVENT_LIST_ORDER_BY_STATUS:
		// asc lists active events first, desc lists expired first
		q = q.OrderExpr("(CASE WHEN date >= ? THEN 0 ELSE 1 END) "+direction, opts.Today).
			OrderExpr("date " + direction)
	default:
		q = q.OrderExpr("created_at " + direction)
	}
	if err := q.OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return eventModels, nil
}
