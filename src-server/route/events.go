package route

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventboard/src-server/event"
	"eventboard/src-server/ical"
	"eventboard/src-server/nonce"
	"eventboard/src-server/utils"
)

const filterEndpoint = "/events/filter"

type pageView struct {
	StyleURL  string
	ScriptURL string
	Endpoint  string
	Token     string
	Upcoming  template.HTML
	Past      template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Events</title>
<link rel="stylesheet" href="{{.StyleURL}}">
</head>
<body>
{{.Upcoming}}
{{.Past}}
<script src="{{.ScriptURL}}" data-endpoint="{{.Endpoint}}" data-nonce="{{.Token}}" defer></script>
</body>
</html>
`))

func Events(muxer *http.ServeMux, as *utils.AppState) {
	filter := &event.Filter{
		Store: &event.BunStore{
			DB:     as.BunDB,
			OnRead: as.MetricChans.ObserveDatabaseRead,
		},
		Verifier: as.Nonce,
	}

	// the asynchronous filter endpoint, answers with an HTML fragment
	muxer.HandleFunc("POST "+filterEndpoint, func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid form body"))
			return
		}
		req := parseFilterRequest(r)

		fragment, err := filter.Handle(r.Context(), req, as.Now())
		outcome := "ok"
		switch {
		case errors.Is(err, event.ErrInvalidToken):
			outcome = "rejected"
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Invalid anti-forgery token"))
		case err != nil:
			outcome = "error"
			slog.Error("can't filter events", "window", req.Window, "audience", req.Audience, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load events"))
		default:
			writeHTML(w, http.StatusOK, fragment)
		}

		as.MetricChans.ObserveFilterRequest(utils.FilterRequestMetric{
			Window:  string(req.Normalize().Window),
			Outcome: outcome,
			Latency: time.Since(startTimer),
		})
	})

	// embedding directives
	muxer.HandleFunc("GET /embed/upcoming", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeSection(w, r, filter, as, event.WINDOW_UPCOMING, limit)
	})
	muxer.HandleFunc("GET /embed/past", func(w http.ResponseWriter, r *http.Request) {
		writeSection(w, r, filter, as, event.WINDOW_PAST, 0)
	})

	// iCalendar feed of upcoming events, optionally narrowed to one audience
	muxer.HandleFunc("GET /events.ics", func(w http.ResponseWriter, r *http.Request) {
		now := as.Now()
		audience := strings.TrimSpace(r.URL.Query().Get("audience"))
		if audience == "" {
			audience = event.AudienceAll
		}
		eventModels, err := filter.Store.Find(r.Context(), event.BuildQuery(event.WINDOW_UPCOMING, audience, 0, now))
		if err != nil {
			slog.Error("can't list events for the feed", "audience", audience, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load events"))
			return
		}

		var feed bytes.Buffer
		if err := ical.Write(&feed, "Upcoming Events", eventModels, now); err != nil {
			slog.Error("can't write event feed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't write feed"))
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(feed.Bytes())
	})

	// a page hosting both directives and the filter script
	muxer.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		now := as.Now()
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var upcoming, past bytes.Buffer
		if err := filter.Section(r.Context(), &upcoming, event.WINDOW_UPCOMING, limit, now); err != nil {
			slog.Error("can't render upcoming events", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load events"))
			return
		}
		if err := filter.Section(r.Context(), &past, event.WINDOW_PAST, 0, now); err != nil {
			slog.Error("can't render past events", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't load events"))
			return
		}

		token, err := as.Nonce.Issue(nonce.ACTION_EVENT_FILTER)
		if err != nil {
			slog.Error("can't issue anti-forgery token", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't issue anti-forgery token"))
			return
		}

		var page bytes.Buffer
		if err := pageTmpl.Execute(&page, pageView{
			StyleURL:  staticURL("events.css"),
			ScriptURL: staticURL("events.js"),
			Endpoint:  filterEndpoint,
			Token:     token,
			Upcoming:  template.HTML(upcoming.String()),
			Past:      template.HTML(past.String()),
		}); err != nil {
			slog.Error("can't render events page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't render page"))
			return
		}
		writeHTML(w, http.StatusOK, page.Bytes())
	})
}

func writeSection(w http.ResponseWriter, r *http.Request, filter *event.Filter, as *utils.AppState, window event.Window, limit int) {
	var section bytes.Buffer
	if err := filter.Section(r.Context(), &section, window, limit, as.Now()); err != nil {
		slog.Error("can't render events section", "window", window, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't load events"))
		return
	}
	writeHTML(w, http.StatusOK, section.Bytes())
}

// parseFilterRequest never fails: every field has a default.
func parseFilterRequest(r *http.Request) event.FilterRequest {
	req := event.FilterRequest{
		Window:   event.WINDOW_UPCOMING,
		Audience: r.PostForm.Get("audience"),
		Token:    r.PostForm.Get("nonce"),
	}
	switch strings.ToLower(strings.TrimSpace(r.PostForm.Get("is_past"))) {
	case "1", "true", "on", "yes":
		req.Window = event.WINDOW_PAST
	}
	req.Limit, _ = strconv.Atoi(strings.TrimSpace(r.PostForm.Get("limit")))
	return req
}
