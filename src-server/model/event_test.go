package model_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventboard/src-server/model"

	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), db))
	return db
}

func TestEventUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	eventModel := model.Event{
		ID:           uuid.NewString(),
		Title:        "Open house",
		Date:         "2025-03-04",
		TimeFrom:     "10:00 AM",
		Address:      "1 Main St\nSpringfield",
		RegisterLink: "https://example.com/register",
		Audience:     []string{"Students", "Industry"},
	}
	require.NoError(t, eventModel.Upsert(ctx, db))

	// case: audience comes back in the stored order
	func() {
		got, err := model.GetEvent(ctx, db, eventModel.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Students", "Industry"}, got.AudienceTags())
		assert.Equal(t, "1 Main St\nSpringfield", got.Address)
		assert.NotZero(t, got.CreatedAt)
	}()

	// case: a save overwrites every field, blanks included
	func() {
		overwrite := model.Event{
			ID:       eventModel.ID,
			Title:    "Open house (moved)",
			Audience: nil,
		}
		require.NoError(t, overwrite.Upsert(ctx, db))

		got, err := model.GetEvent(ctx, db, eventModel.ID)
		require.NoError(t, err)
		assert.Equal(t, "Open house (moved)", got.Title)
		assert.Empty(t, got.Date)
		assert.Empty(t, got.RegisterLink)
		assert.Empty(t, got.AudienceTags())
		assert.NotZero(t, got.UpdatedAt)
	}()

	// case: delete
	func() {
		require.NoError(t, model.DeleteEvent(ctx, db, eventModel.ID))
		_, err := model.GetEvent(ctx, db, eventModel.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	}()
}

func TestEventUpsertRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for name, e := range map[string]model.Event{
		"blank id":     {Title: "x"},
		"blank title":  {ID: uuid.NewString()},
		"invalid date": {ID: uuid.NewString(), Title: "x", Date: "2025-13-40"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, e.Upsert(ctx, db))
		})
	}
}

func TestListEventsByStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, e := range []model.Event{
		{ID: "a", Title: "expired", Date: "2025-01-10"},
		{ID: "b", Title: "active later", Date: "2025-06-01"},
		{ID: "c", Title: "no date"},
		{ID: "d", Title: "active today", Date: "2025-03-04"},
	} {
		require.NoError(t, e.Upsert(ctx, db))
	}

	ids := func(events []model.Event) []string {
		out := make([]string, len(events))
		for i, e := range events {
			out[i] = e.ID
		}
		return out
	}

	asc, err := model.ListEvents(ctx, db, model.EventListOptions{
		OrderBy: model.EVENT_LIST_ORDER_BY_STATUS,
		Today:   "2025-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids(asc))

	desc, err := model.ListEvents(ctx, db, model.EventListOptions{
		OrderBy: model.EVENT_LIST_ORDER_BY_STATUS,
		Desc:    true,
		Today:   "2025-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(desc))

	byDate, err := model.ListEvents(ctx, db, model.EventListOptions{
		OrderBy: model.EVENT_LIST_ORDER_BY_DATE,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(byDate))
}

func TestEventFormToEvent(t *testing.T) {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	now := time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

	t.Run("sanitizes every field", func(t *testing.T) {
		var e model.Event
		err := model.EventForm{
			Title:        "  <b>Career</b>   fair ",
			Address:      "<script>x</script>1 Main St  \r\n  Springfield ",
			RegisterLink: "example.com/register",
			MoreInfoLink: "javascript:alert(1)",
			Date:         "2025-03-10",
			TimeFrom:     " 10:00   AM ",
			Audience:     []string{" students", "Industry", "Students"},
		}.ToEvent(&e, now, parser)
		require.NoError(t, err)

		assert.Equal(t, "Career fair", e.Title)
		assert.Equal(t, "x1 Main St\nSpringfield", e.Address)
		assert.Equal(t, "http://example.com/register", e.RegisterLink)
		assert.Empty(t, e.MoreInfoLink)
		assert.Equal(t, "2025-03-10", e.Date)
		assert.Equal(t, "10:00 AM", e.TimeFrom)
		assert.Equal(t, []string{"Students", "Industry"}, e.Audience)
	})

	t.Run("natural language date", func(t *testing.T) {
		var e model.Event
		err := model.EventForm{Title: "Meetup", Date: "tomorrow"}.ToEvent(&e, now, parser)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-05", e.Date)
	})

	t.Run("unparsable date", func(t *testing.T) {
		var e model.Event
		err := model.EventForm{Title: "Meetup", Date: "qwerty"}.ToEvent(&e, now, parser)
		var formErr *model.FormError
		require.True(t, errors.As(err, &formErr))
		assert.Equal(t, []string{"Date"}, formErr.Fields)
	})

	t.Run("unknown audience and blank title", func(t *testing.T) {
		var e model.Event
		err := model.EventForm{Audience: []string{"Parents"}}.ToEvent(&e, now, parser)
		var formErr *model.FormError
		require.True(t, errors.As(err, &formErr))
		assert.ElementsMatch(t, []string{"Title", "Audience[0]"}, formErr.Fields)
		assert.ErrorIs(t, err, model.ErrEventFormField)
	})
}
