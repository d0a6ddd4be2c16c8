package admin

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"eventboard/src-server/model"
)

type ListPage struct {
	Events  []model.Event
	OrderBy model.EventListOrderBy
	Desc    bool
	Now     time.Time
	// for the delete buttons
	Token string
}

type headerView struct {
	Title string
	Href  string
	Class string
}

type rowView struct {
	ID    string
	Title string
	Cells []Cell
}

type listView struct {
	Headers []headerView
	Rows    []rowView
	Token   string
}

var listTmpl = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Events</title>
<link rel="stylesheet" href="/static/admin.css">
</head>
<body>
<h1>Events <a href="/admin/events/new" class="page-title-action">Add New</a></h1>
<table class="wp-list-table widefat">
<thead><tr><th>Title</th>
{{- range .Headers}}<th class="{{.Class}}"><a href="{{.Href}}">{{.Title}}</a></th>{{end -}}
<th></th></tr></thead>
<tbody>
{{- range .Rows}}
<tr>
<td><a href="/admin/events/{{.ID}}">{{.Title}}</a></td>
{{- range .Cells}}<td>{{if .Class}}<span class="{{.Class}}">{{.Text}}</span>{{else}}{{.Text}}{{end}}</td>{{end}}
<td><form method="post" action="/admin/events/{{.ID}}/delete"><input type="hidden" name="nonce" value="{{$.Token}}"><button type="submit">Delete</button></form></td>
</tr>
{{- else}}
<tr><td colspan="4">No events found.</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

func RenderList(w io.Writer, page ListPage) error {
	view := listView{Token: page.Token}
	for _, column := range Columns {
		header := headerView{Title: column.Title(), Class: "column-" + column.Key()}
		// clicking the current sort column flips the direction
		order := "asc"
		if page.OrderBy == model.EventListOrderBy(column.Key()) {
			header.Class += " sorted"
			if !page.Desc {
				order = "desc"
			}
		}
		header.Href = "?" + url.Values{"orderby": {column.Key()}, "order": {order}}.Encode()
		view.Headers = append(view.Headers, header)
	}

	for i := range page.Events {
		e := &page.Events[i]
		row := rowView{ID: e.ID, Title: e.Title}
		for _, column := range Columns {
			row.Cells = append(row.Cells, column.Format(e, page.Now))
		}
		view.Rows = append(view.Rows, row)
	}

	if err := listTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("RenderList: %w", err)
	}
	return nil
}
