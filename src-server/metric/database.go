package metric

import (
	"context"
	"time"

	"eventboard/src-server/model"
	"eventboard/src-server/utils"
)

func database(ctx context.Context, as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("id = ?", "").
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func upcomingEvents(ctx context.Context, as *utils.AppState) (int, error) {
	return as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("date >= ?", as.Now().Format(model.EventDateLayout)).
		Count(ctx)
}
