package admin

import (
	"fmt"
	"html/template"
	"io"
	"slices"
	"time"

	"eventboard/src-server/model"
)

// FormOptions are what the caller knows about the page being rendered.
type FormOptions struct {
	// DatePicker pulls in the date picker assets. Only the event editor
	// needs them.
	DatePicker bool
}

type FormPage struct {
	Event   model.Event
	IsNew   bool
	Now     time.Time
	Token   string
	Invalid []string
	Options FormOptions
}

type audienceOption struct {
	Value   string
	Checked bool
}

type formView struct {
	FormPage
	Action    string
	Status    StatusBox
	Audiences []audienceOption
}

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .IsNew}}Add Event{{else}}Edit Event{{end}}</title>
<link rel="stylesheet" href="/static/admin.css">
{{- if .Options.DatePicker}}
<script src="/static/datepicker.js" defer></script>
{{- end}}
</head>
<body>
<h1>{{if .IsNew}}Add Event{{else}}Edit Event{{end}}</h1>
{{- with .Invalid}}
<div class="notice notice-error"><p>Please check: {{range $i, $f := .}}{{if $i}}, {{end}}{{$f}}{{end}}</p></div>
{{- end}}
<form method="post" action="{{.Action}}">
<input type="hidden" name="nonce" value="{{.Token}}">
<div class="event-status {{.Status.Class}}">{{.Status.Label}}</div>
{{- with .Status.DaysRemaining}}
<p class="days-remaining">Days remaining: {{.}}</p>
{{- end}}
<label>Title:</label>
<input type="text" name="title" value="{{.Event.Title}}" class="widefat" required>
<label>Address:</label>
<textarea name="event_address" class="widefat">{{.Event.Address}}</textarea>
<label>Register Now Link:</label>
<input type="url" name="event_register_link" value="{{.Event.RegisterLink}}" class="widefat">
<label>More Information Link:</label>
<input type="url" name="event_more_info_link" value="{{.Event.MoreInfoLink}}" class="widefat">
<label>Date:</label>
<input type="text" name="event_date" id="event_date" value="{{.Event.Date}}" class="widefat datepicker" placeholder="YYYY-MM-DD or e.g. next friday">
<label>Event Time From:</label>
<input type="text" name="event_time_from" value="{{.Event.TimeFrom}}" class="widefat">
<label>Target Audience:</label>
<div>
{{- range .Audiences}}
<label><input type="checkbox" name="event_audience[]" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Value}}</label><br>
{{- end}}
</div>
<button type="submit">Save</button>
</form>
</body>
</html>
`))

func RenderForm(w io.Writer, page FormPage) error {
	view := formView{
		FormPage: page,
		Action:   "/admin/events",
		Status:   NewStatusBox(&page.Event, page.Now),
	}
	if !page.IsNew {
		view.Action = "/admin/events/" + page.Event.ID
	}
	tags := page.Event.AudienceTags()
	for _, option := range model.AudienceOptions {
		view.Audiences = append(view.Audiences, audienceOption{
			Value:   option,
			Checked: slices.Contains(tags, option),
		})
	}

	if err := formTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("RenderForm: %w", err)
	}
	return nil
}
