package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const EventDateLayout = "2006-01-02"

// The fixed set of audience tags an event can be targeted at.
var AudienceOptions = []string{"Industry", "Students", "Educators", "Community"}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID    string `bun:"id,pk"`         // required
	Title string `bun:"title,notnull"` // required

	// YYYY-MM-DD, blank when the date is not set yet
	Date         string `bun:"date,notnull"`
	TimeFrom     string `bun:"time_from,notnull"`
	Address      string `bun:"address,notnull"`
	RegisterLink string `bun:"register_link,notnull"`
	MoreInfoLink string `bun:"more_info_link,notnull"`
	// stored as a JSON array, order is kept as entered
	Audience []string `bun:"audience,type:json"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`
}

// AudienceTags never returns nil, so callers can treat the audience as a set
// even for rows written before any tag was picked.
func (e *Event) AudienceTags() []string {
	if e.Audience == nil {
		return []string{}
	}
	return e.Audience
}

// Upsert overwrites every editable field of the event, there is no partial
// update path.
func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.Title == "":
		return fmt.Errorf("(*Event).Upsert: title is blank")
	case e.Date != "":
		if _, err := time.Parse(EventDateLayout, e.Date); err != nil {
			return fmt.Errorf("(*Event).Upsert: date is invalid: %w", err)
		}
	}
	if e.Audience == nil {
		e.Audience = []string{}
	}

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		e.UpdatedAt = time.Now().UTC().Unix()
		if _, err := db.NewUpdate().
			Model(e).
			Column("title", "date", "time_from", "address", "register_link", "more_info_link", "audience", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	case false:
		if e.CreatedAt == 0 {
			e.CreatedAt = time.Now().UTC().Unix()
		}
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	return nil
}

func GetEvent(ctx context.Context, db bun.IDB, id string) (*Event, error) {
	eventModel := new(Event)
	if err := db.NewSelect().
		Model(eventModel).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return eventModel, nil
}

func DeleteEvent(ctx context.Context, db bun.IDB, id string) error {
	if _, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	return nil
}
