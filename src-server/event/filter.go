package event

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"eventboard/src-server/nonce"
)

var ErrInvalidToken = errors.New("invalid anti-forgery token")

type FilterRequest struct {
	Window   Window
	Audience string
	// only honored for the upcoming window, <= 0 means no cap
	Limit int
	Token string
}

// Filter answers filter requests with a rendered fragment. It keeps no
// state between calls and is safe for concurrent use.
type Filter struct {
	Store    Store
	Verifier nonce.Verifier
}

// Handle verifies the token before anything else: a rejected request never
// reaches the store or the renderer.
func (f *Filter) Handle(ctx context.Context, req FilterRequest, now time.Time) ([]byte, error) {
	if err := f.Verifier.Verify(req.Token, nonce.ACTION_EVENT_FILTER); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	req = req.Normalize()
	items, err := f.items(ctx, req, now)
	if err != nil {
		return nil, fmt.Errorf("(*Filter).Handle: %w", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, items, req.Window); err != nil {
		return nil, fmt.Errorf("(*Filter).Handle: %w", err)
	}
	return buf.Bytes(), nil
}

// Section renders an embeddable region for the window, pre-filled with every
// audience. It backs the embedding directives, which are rendered into our
// own pages and so carry no token.
func (f *Filter) Section(ctx context.Context, w io.Writer, window Window, limit int, now time.Time) error {
	req := FilterRequest{Window: window, Limit: limit}.Normalize()
	items, err := f.items(ctx, req, now)
	if err != nil {
		return fmt.Errorf("(*Filter).Section: %w", err)
	}
	if err := RenderSection(w, items, req.Window, req.Limit); err != nil {
		return fmt.Errorf("(*Filter).Section: %w", err)
	}
	return nil
}

func (f *Filter) items(ctx context.Context, req FilterRequest, now time.Time) ([]Item, error) {
	eventModels, err := f.Store.Find(ctx, BuildQuery(req.Window, req.Audience, req.Limit, now))
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(eventModels))
	for i := range eventModels {
		items[i] = Item{
			Event:          eventModels[i],
			Classification: ClassifyEvent(&eventModels[i], now),
		}
		// past results never carry a proximity badge
		if req.Window.IsPast() {
			items[i].Classification.Proximity = PROXIMITY_NONE
		}
	}
	return items, nil
}

// Normalize defaults a blank audience to "all" and anything that isn't the
// past window to upcoming. Unknown audience values are kept as is, they just
// match nothing.
func (r FilterRequest) Normalize() FilterRequest {
	r.Audience = strings.TrimSpace(r.Audience)
	if r.Audience == "" {
		r.Audience = AudienceAll
	}
	if r.Window != WINDOW_PAST {
		r.Window = WINDOW_UPCOMING
	}
	if r.Window.IsPast() || r.Limit < 0 {
		r.Limit = 0
	}
	return r
}
