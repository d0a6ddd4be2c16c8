package client

import (
	"context"
	"log/slog"
	"sync"

	"eventboard/src-server/event"
)

const ErrorFragment = "<p>Error loading events.</p>"

// Fetcher asks the filter endpoint for a rendered fragment.
type Fetcher interface {
	Fetch(ctx context.Context, window event.Window, audience string) (string, error)
}

// Display is the page the controller drives. It is only ever touched from
// the controller's loop.
type Display interface {
	// HasRegion reports whether the page shows a region for the window.
	HasRegion(window event.Window) bool
	// SetActive highlights one control of the window's filter group and
	// clears the others.
	SetActive(window event.Window, audience string)
	Show(window event.Window, fragment string)
}

// Control is one filter link; Region is the window of the region that
// contains it.
type Control struct {
	Region   event.Window
	Audience string
}

type Option func(*Controller)

// WithSequenceGuard makes the controller drop a response when a newer request
// for the same window was issued after it. Without it, responses are applied
// in whatever order they complete and a slow one can overwrite a newer one.
func WithSequenceGuard() Option {
	return func(c *Controller) {
		c.sequenceGuard = true
	}
}

// Controller keeps one cache per window, keyed by audience, for the life of
// the page. Entries are never invalidated and failed requests are never
// cached, so clicking again retries.
//
// Everything except the fetch itself runs on the loop: call Start, Activate
// and Load from the goroutine running Run (or Step), or through Post.
// Once Run returns, or Close is called, queued and late work is dropped.
type Controller struct {
	fetcher Fetcher
	display Display

	cache map[event.Window]map[string]string
	loop  chan func()

	done      chan struct{}
	closeOnce sync.Once

	sequenceGuard bool
	sequence      map[event.Window]uint64
}

func NewController(fetcher Fetcher, display Display, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		display: display,
		cache: map[event.Window]map[string]string{
			event.WINDOW_UPCOMING: {},
			event.WINDOW_PAST:     {},
		},
		loop:     make(chan func(), 16),
		done:     make(chan struct{}),
		sequence: make(map[event.Window]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start does the initial load: "all" for the upcoming window, and for the
// past window too when the page has a past region.
func (c *Controller) Start(ctx context.Context) {
	c.Load(ctx, event.WINDOW_UPCOMING, event.AudienceAll)
	if c.display.HasRegion(event.WINDOW_PAST) {
		c.Load(ctx, event.WINDOW_PAST, event.AudienceAll)
	}
}

// Activate handles a click on a filter control.
func (c *Controller) Activate(ctx context.Context, control Control) {
	window := event.WINDOW_UPCOMING
	if control.Region.IsPast() {
		window = event.WINDOW_PAST
	}
	c.display.SetActive(window, control.Audience)
	c.Load(ctx, window, control.Audience)
}

// Load shows the cached fragment right away if there is one, otherwise it
// fetches in the background and shows the result once the loop picks it up.
func (c *Controller) Load(ctx context.Context, window event.Window, audience string) {
	if fragment, ok := c.cache[window][audience]; ok {
		c.display.Show(window, fragment)
		return
	}

	c.sequence[window]++
	seq := c.sequence[window]
	go func() {
		fragment, err := c.fetcher.Fetch(ctx, window, audience)
		c.Post(func() {
			if c.sequenceGuard && seq != c.sequence[window] {
				slog.Debug("dropping stale events response", "window", window, "audience", audience)
				return
			}
			if err != nil {
				slog.Warn("can't load events", "window", window, "audience", audience, "error", err)
				c.display.Show(window, ErrorFragment)
				return
			}
			c.cache[window][audience] = fragment
			c.display.Show(window, fragment)
		})
	}()
}

// Cached reports whether a fragment for the pair is cached.
func (c *Controller) Cached(window event.Window, audience string) bool {
	_, ok := c.cache[window][audience]
	return ok
}

// Post queues fn to run on the loop. After Close it drops fn instead of
// blocking on a loop nobody drains.
func (c *Controller) Post(fn func()) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.loop <- fn:
	case <-c.done:
	}
}

// Close stops the controller accepting work. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Run processes queued work until ctx is done, then closes the controller.
func (c *Controller) Run(ctx context.Context) error {
	defer c.Close()
	for {
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
}

// Step runs exactly one queued function, waiting for one if needed.
func (c *Controller) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fn := <-c.loop:
		fn()
		return nil
	}
}
