package route

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventboard/src-server/admin"
	"eventboard/src-server/event"
	"eventboard/src-server/model"
	"eventboard/src-server/nonce"
	"eventboard/src-server/utils"

	"github.com/google/uuid"
)

func Admin(muxer *http.ServeMux, as *utils.AppState) {
	// list
	muxer.HandleFunc("GET /admin/events", func(w http.ResponseWriter, r *http.Request) {
		now := as.Now()
		opts := model.EventListOptions{
			Desc:  r.URL.Query().Get("order") == "desc",
			Today: event.Midnight(now).Format(model.EventDateLayout),
		}
		switch orderBy := model.EventListOrderBy(r.URL.Query().Get("orderby")); orderBy {
		case model.EVENT_LIST_ORDER_BY_DATE, model.EVENT_LIST_ORDER_BY_STATUS:
			opts.OrderBy = orderBy
		}

		eventModels, err := timedRead(as, func() ([]model.Event, error) {
			return model.ListEvents(r.Context(), as.BunDB, opts)
		})
		if err != nil {
			slog.Error("can't list events", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't list events"))
			return
		}
		token, ok := issueToken(w, as, nonce.ACTION_EVENT_DELETE)
		if !ok {
			return
		}

		var page bytes.Buffer
		if err := admin.RenderList(&page, admin.ListPage{
			Events:  eventModels,
			OrderBy: opts.OrderBy,
			Desc:    opts.Desc,
			Now:     now,
			Token:   token,
		}); err != nil {
			slog.Error("can't render event list", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't render page"))
			return
		}
		writeHTML(w, http.StatusOK, page.Bytes())
	})

	// blank form
	muxer.HandleFunc("GET /admin/events/new", func(w http.ResponseWriter, r *http.Request) {
		renderForm(w, as, admin.FormPage{IsNew: true}, http.StatusOK)
	})

	// edit form
	muxer.HandleFunc("GET /admin/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		eventModel, ok := loadEvent(w, r, as)
		if !ok {
			return
		}
		renderForm(w, as, admin.FormPage{Event: *eventModel}, http.StatusOK)
	})

	// create
	muxer.HandleFunc("POST /admin/events", NonceMiddleware(as, nonce.ACTION_EVENT_SAVE, func(w http.ResponseWriter, r *http.Request) {
		saveEvent(w, r, as, &model.Event{ID: uuid.NewString()}, true)
	}))

	// update
	muxer.HandleFunc("POST /admin/events/{id}", NonceMiddleware(as, nonce.ACTION_EVENT_SAVE, func(w http.ResponseWriter, r *http.Request) {
		eventModel, ok := loadEvent(w, r, as)
		if !ok {
			return
		}
		saveEvent(w, r, as, eventModel, false)
	}))

	// delete
	muxer.HandleFunc("POST /admin/events/{id}/delete", NonceMiddleware(as, nonce.ACTION_EVENT_DELETE, func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		if err := model.DeleteEvent(r.Context(), as.BunDB, r.PathValue("id")); err != nil {
			slog.Error("can't delete event", "id", r.PathValue("id"), "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete event"))
			return
		}
		as.MetricChans.ObserveDatabaseWrite(time.Since(startTimer))
		http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
	}))
}

// saveEvent writes the posted form onto target and stores it. Invalid input
// re-renders the form with the offending fields listed.
func saveEvent(w http.ResponseWriter, r *http.Request, as *utils.AppState, target *model.Event, isNew bool) {
	form := model.EventForm{
		Title:        r.PostForm.Get("title"),
		Address:      r.PostForm.Get("event_address"),
		RegisterLink: r.PostForm.Get("event_register_link"),
		MoreInfoLink: r.PostForm.Get("event_more_info_link"),
		Date:         r.PostForm.Get("event_date"),
		TimeFrom:     r.PostForm.Get("event_time_from"),
		Audience:     r.PostForm["event_audience[]"],
	}

	if err := form.ToEvent(target, as.Now(), as.When); err != nil {
		var formErr *model.FormError
		if errors.As(err, &formErr) {
			// show back what was posted, not what is stored
			posted := *target
			posted.Title = form.Title
			posted.Address = form.Address
			posted.RegisterLink = form.RegisterLink
			posted.MoreInfoLink = form.MoreInfoLink
			posted.Date = form.Date
			posted.TimeFrom = form.TimeFrom
			posted.Audience = form.Audience
			renderForm(w, as, admin.FormPage{Event: posted, IsNew: isNew, Invalid: formErr.Fields}, http.StatusBadRequest)
			return
		}
		slog.Error("can't read event form", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't save event"))
		return
	}

	startTimer := time.Now()
	if err := target.Upsert(r.Context(), as.BunDB); err != nil {
		slog.Error("can't save event", "id", target.ID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't save event"))
		return
	}
	as.MetricChans.ObserveDatabaseWrite(time.Since(startTimer))
	slog.Info("event saved", "id", target.ID, "title", target.Title, "new", isNew)

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

func loadEvent(w http.ResponseWriter, r *http.Request, as *utils.AppState) (*model.Event, bool) {
	eventModel, err := timedRead(as, func() (*model.Event, error) {
		return model.GetEvent(r.Context(), as.BunDB, r.PathValue("id"))
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Event not found"))
		return nil, false
	case err != nil:
		slog.Error("can't get event", "id", r.PathValue("id"), "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't get event"))
		return nil, false
	}
	return eventModel, true
}

func renderForm(w http.ResponseWriter, as *utils.AppState, page admin.FormPage, status int) {
	token, ok := issueToken(w, as, nonce.ACTION_EVENT_SAVE)
	if !ok {
		return
	}
	page.Now = as.Now()
	page.Token = token
	page.Options = admin.FormOptions{DatePicker: true}

	var buf bytes.Buffer
	if err := admin.RenderForm(&buf, page); err != nil {
		slog.Error("can't render event form", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't render page"))
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func issueToken(w http.ResponseWriter, as *utils.AppState, action string) (string, bool) {
	token, err := as.Nonce.Issue(action)
	if err != nil {
		slog.Error("can't issue anti-forgery token", "action", action, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't issue anti-forgery token"))
		return "", false
	}
	return token, true
}

func timedRead[T any](as *utils.AppState, read func() (T, error)) (T, error) {
	startTimer := time.Now()
	result, err := read()
	if err == nil {
		as.MetricChans.ObserveDatabaseRead(time.Since(startTimer))
	}
	return result, err
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
