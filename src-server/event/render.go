package event

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"eventboard/src-server/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	longDateLayout = "Monday, January 2, 2006"
	dateTBD        = "Date TBD"
)

// Item is one record on its way to the page, with its classification.
type Item struct {
	Event          model.Event
	Classification Classification
}

type blockView struct {
	Past         bool
	Date         string
	TimeFrom     string
	Badge        *badgeView
	Title        string
	Initials     []string
	RegisterLink string
	AddressLines []string
	MoreInfoLink string
}

type badgeView struct {
	Class string
	Label string
}

var badges = map[Proximity]badgeView{
	PROXIMITY_TODAY:    {Class: "today-tag", Label: "Today"},
	PROXIMITY_TOMORROW: {Class: "tomorrow-tag", Label: "Tomorrow"},
	PROXIMITY_SOON:     {Class: "soon-tag", Label: "Coming Soon"},
}

const arrowIcon = `<div class="event-btn-icon"><svg class="event-arrow-icon" viewBox="0 0 448 512" xmlns="http://www.w3.org/2000/svg"><path d="M190.5 66.9l22.2-22.2c9.4-9.4 24.6-9.4 33.9 0L441 239c9.4 9.4 9.4 24.6 0 33.9L246.6 467.3c-9.4 9.4-24.6 9.4-33.9 0l-22.2-22.2c-9.5-9.5-9.3-25 .4-34.3L311.4 296H24c-13.3 0-24-10.7-24-24v-32c0-13.3 10.7-24 24-24h287.4L190.9 101.2c-9.8-9.3-10-24.8-.4-34.3z"></path></svg></div>`

var fragmentTmpl = template.Must(template.New("fragment").
	Funcs(template.FuncMap{"arrow": func() template.HTML { return arrowIcon }}).
	Parse(`
{{- define "block" -}}
<div class="column column-block">
<div class="event-block{{if .Past}} past-event{{end}}">
<div class="event-header">
<p>{{.Date}}</p>
<p>{{.TimeFrom}}</p>
{{- with .Badge}}
<span class="event-tag {{.Class}}">{{.Label}}</span>
{{- end}}
</div>
<div class="event-content">
<h3>{{.Title}}</h3>
<div class="event-info">
<div class="keys">{{range .Initials}}<span class="key">{{.}}</span>{{end}}</div>
{{- with .RegisterLink}}
<a href="{{.}}" target="_blank" rel="nofollow" class="event-register-btn"><span>Register Now</span>{{arrow}}</a>
{{- end}}
</div>
<div class="event-location">
<p>{{range $i, $line := .AddressLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{- with .MoreInfoLink}}
<a href="{{.}}" rel="nofollow" class="event-more-info-btn"><span>More Information</span>{{arrow}}</a>
{{- end}}
</div>
</div>
</div>
</div>
{{end -}}
{{- range .}}{{template "block" .}}{{end -}}
`))

// Render writes one block per item, in the order given. Badges and the
// register button only show up in the upcoming window. An empty list renders
// a single "No ... events." paragraph.
func Render(w io.Writer, items []Item, window Window) error {
	if len(items) == 0 {
		if _, err := io.WriteString(w, EmptyMessage(window)); err != nil {
			return fmt.Errorf("Render: %w", err)
		}
		return nil
	}

	views := make([]blockView, len(items))
	for i, item := range items {
		views[i] = newBlockView(item, window)
	}
	if err := fragmentTmpl.Execute(w, views); err != nil {
		return fmt.Errorf("Render: %w", err)
	}
	return nil
}

func EmptyMessage(window Window) string {
	if window.IsPast() {
		return "<p>No past events.</p>"
	}
	return "<p>No upcoming events.</p>"
}

func newBlockView(item Item, window Window) blockView {
	e := item.Event
	view := blockView{
		Past:         window.IsPast(),
		Date:         FormatLongDate(e.Date),
		TimeFrom:     e.TimeFrom,
		Title:        e.Title,
		Initials:     AudienceInitials(e.AudienceTags()),
		AddressLines: strings.Split(e.Address, "\n"),
		MoreInfoLink: e.MoreInfoLink,
	}
	if e.Address == "" {
		view.AddressLines = nil
	}
	if !window.IsPast() {
		if badge, ok := badges[item.Classification.Proximity]; ok {
			view.Badge = &badge
		}
		view.RegisterLink = e.RegisterLink
	}
	return view
}

// FormatLongDate renders a stored date like "Tuesday, March 4, 2025".
func FormatLongDate(date string) string {
	if date == "" {
		return dateTBD
	}
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return dateTBD
	}
	return t.Format(longDateLayout)
}

// AudienceInitials keeps the stored order of the tags.
func AudienceInitials(tags []string) []string {
	upper := cases.Upper(language.English)
	initials := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tag)
		initials = append(initials, upper.String(string(r)))
	}
	return initials
}
