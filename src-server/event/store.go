package event

import (
	"context"
	"fmt"
	"time"

	"eventboard/src-server/model"

	"github.com/uptrace/bun"
)

// Store runs a Query and returns the matching records in query order.
type Store interface {
	Find(ctx context.Context, q Query) ([]model.Event, error)
}

type BunStore struct {
	DB bun.IDB
	// called with the latency of every successful read, may be nil
	OnRead func(time.Duration)
}

func (s *BunStore) Find(ctx context.Context, q Query) ([]model.Event, error) {
	switch {
	case q.DateCompare != DATE_COMPARE_ON_OR_AFTER && q.DateCompare != DATE_COMPARE_BEFORE:
		return nil, fmt.Errorf("(*BunStore).Find: unknown date comparison %q", q.DateCompare)
	case q.Order != SORT_ASC && q.Order != SORT_DESC:
		return nil, fmt.Errorf("(*BunStore).Find: unknown sort order %q", q.Order)
	}
	startTimer := time.Now()

	eventModels := make([]model.Event, 0)
	sel := s.DB.NewSelect().
		Model(&eventModels).
		// unset dates never fall in either window
		Where("date <> ''").
		Where("date "+string(q.DateCompare)+" ?", q.DateValue)
	if q.Audience != "" {
		sel = sel.Where("EXISTS (SELECT 1 FROM json_each(event.audience) WHERE json_each.value = ?)", q.Audience)
	}
	sel = sel.
		OrderExpr("date " + string(q.Order)).
		OrderExpr("created_at ASC").
		OrderExpr("id ASC")
	if q.Limit > 0 {
		sel = sel.Limit(q.Limit)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*BunStore).Find: %w", err)
	}

	if s.OnRead != nil {
		s.OnRead(time.Since(startTimer))
	}
	return eventModels, nil
}
