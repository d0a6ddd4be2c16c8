package ical

import (
	"strings"
	"testing"
	"time"

	"eventboard/src-server/model"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedEvents = []model.Event{
	{
		ID:           "fair",
		Title:        "Career fair",
		Date:         "2025-03-07",
		TimeFrom:     "10am",
		Address:      "1 Main St\nSpringfield",
		MoreInfoLink: "https://example.com/info",
		Audience:     []string{"Industry", "Students"},
	},
	{ID: "tbd", Title: "Someday"},
	{ID: "camp", Title: "Coding camp", Date: "2025-07-01", RegisterLink: "https://example.com/register", MoreInfoLink: "https://example.com/info"},
}

// categories lists the values of every CATEGORIES property, in order.
func categories(vevent *ics.VEvent) []string {
	var out []string
	for _, p := range vevent.Properties {
		if p.IANAToken == string(ics.ComponentPropertyCategories) {
			out = append(out, p.Value)
		}
	}
	return out
}

func TestWrite(t *testing.T) {
	stamp := time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)

	var sb strings.Builder
	require.NoError(t, Write(&sb, "Upcoming Events", feedEvents, stamp))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+prodID)
	assert.Contains(t, out, "X-WR-CALNAME:Upcoming Events")
	assert.Contains(t, out, "DTSTAMP:20250304T103000Z")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250307")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250308")
	assert.Contains(t, out, "CATEGORIES:Industry")
	assert.Contains(t, out, "CATEGORIES:Students")
	assert.NotContains(t, out, `\,`)
	assert.NotContains(t, out, "Someday")

	// what we wrote reads back as a calendar
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	fair := events[0]
	assert.Equal(t, "fair@eventboard", fair.Id())
	start, err := fair.GetAllDayStartAt()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", start.Format(model.EventDateLayout))
	assert.Equal(t, "Career fair", fair.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Contains(t, fair.GetProperty(ics.ComponentPropertyLocation).Value, "1 Main St")
	assert.Equal(t, "Starts at 10am", fair.GetProperty(ics.ComponentPropertyDescription).Value)
	assert.Equal(t, "https://example.com/info", fair.GetProperty(ics.ComponentPropertyUrl).Value)
	assert.Equal(t, []string{"Industry", "Students"}, categories(fair))

	// the register link wins over more info
	camp := events[1]
	assert.Equal(t, "camp@eventboard", camp.Id())
	assert.Equal(t, "https://example.com/register", camp.GetProperty(ics.ComponentPropertyUrl).Value)
	assert.Empty(t, categories(camp))
	assert.Nil(t, camp.GetProperty(ics.ComponentPropertyLocation))
}

func TestWriteEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Write(&sb, "", nil, time.Now()))
	assert.NotContains(t, sb.String(), "BEGIN:VEVENT")
	assert.NotContains(t, sb.String(), "X-WR-CALNAME")
	assert.Contains(t, sb.String(), "END:VCALENDAR")
}
