package metric

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventboard/src-server/model"
	"eventboard/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func gathered(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestInit(t *testing.T) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, model.CreateSchema(context.Background(), db))

	as := utils.NewAppStateWithDB(utils.DefaultConfig(), db)
	upcoming := model.Event{ID: "e1", Title: "Career fair", Date: as.Now().AddDate(0, 0, 3).Format(model.EventDateLayout)}
	require.NoError(t, upcoming.Upsert(context.Background(), db))

	Init(as)
	defer as.GracefulShutdown()

	as.MetricChans.ObserveFilterRequest(utils.FilterRequestMetric{Window: "past", Outcome: "ok", Latency: time.Millisecond})
	as.MetricChans.ObserveDatabaseRead(1500 * time.Microsecond)

	assert.Eventually(t, func() bool {
		return gathered(t, "eventboard_filter_requests_total") == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return gathered(t, "eventboard_database_read_microsec") == 1500
	}, 5*time.Second, 10*time.Millisecond)

	count, err := upcomingEvents(context.Background(), as)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
