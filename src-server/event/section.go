package event

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"eventboard/src-server/model"
)

type filterControl struct {
	Value  string
	Label  string
	Active bool
}

type sectionView struct {
	Past     bool
	Window   Window
	Limit    int
	Controls []filterControl
	Grid     template.HTML
}

var sectionTmpl = template.Must(template.New("section").Parse(`
{{- if .Past}}<div class="events-section past-events" data-window="{{.Window}}">
<h2>Past Events</h2>
{{- else}}<div class="events-section upcoming-events" data-window="{{.Window}}"{{if .Limit}} data-limit="{{.Limit}}"{{end}}>
{{- end}}
<div class="event-filter">
{{- range .Controls}}
<a href="#" data-audience="{{.Value}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>
{{- end}}
</div>
<div class="events-grid">{{.Grid}}</div>
</div>
`))

// RenderSection writes one embeddable region: the audience filter controls
// and a grid pre-filled with items, "All" selected. A positive limit is kept
// on the region so the page script asks for the same number of events.
func RenderSection(w io.Writer, items []Item, window Window, limit int) error {
	var grid bytes.Buffer
	if err := Render(&grid, items, window); err != nil {
		return fmt.Errorf("RenderSection: %w", err)
	}

	controls := []filterControl{{Value: AudienceAll, Label: "All", Active: true}}
	for _, option := range model.AudienceOptions {
		controls = append(controls, filterControl{Value: option, Label: option})
	}

	if err := sectionTmpl.Execute(w, sectionView{
		Past:     window.IsPast(),
		Window:   window,
		Limit:    limit,
		Controls: controls,
		// Render escapes every record field itself
		Grid: template.HTML(grid.String()),
	}); err != nil {
		return fmt.Errorf("RenderSection: %w", err)
	}
	return nil
}
