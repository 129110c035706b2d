package server

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/buffos/revenue-timeline/internal/metrics"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// ErrSessionNotFound is returned for unknown or closed session ids.
var ErrSessionNotFound = errors.New("session not found")

// Event is a chart notification queued for the client.
type Event struct {
	Kind      string                   `json:"kind"` // "range" or "hover"
	Selection *timeline.SelectionRange `json:"selection,omitempty"`
	Year      *int                     `json:"year,omitempty"`
	At        time.Time                `json:"at"`
}

// maxQueuedEvents bounds a session's undrained notifications; the oldest
// are dropped first.
const maxQueuedEvents = 256

// Session is one chart instance owned by a remote client. The chart lives
// on its own Loop; every method hops onto that goroutine.
type Session struct {
	ID      string
	Created time.Time

	loop    *timeline.Loop
	chart   *timeline.Chart
	resize  *timeline.ResizeBroadcaster
	limiter *rate.Limiter

	width float64 // container width; loop goroutine only

	mu     sync.Mutex
	events []Event
}

func newSession(width float64, records []timeline.Record, opts StoreOptions) (*Session, error) {
	s := &Session{
		ID:      uuid.New().String(),
		Created: time.Now(),
		loop:    timeline.NewLoop(opts.FrameInterval),
		resize:  timeline.NewResizeBroadcaster(),
		limiter: rate.NewLimiter(opts.PointerRate, opts.PointerBurst),
		width:   width,
	}

	err := s.loop.Do(func() {
		s.chart = timeline.New(timeline.Options{
			Container: timeline.ContainerFunc(func() (float64, bool) {
				return s.width, s.width > 0
			}),
			Records:         records,
			OnRangeSelected: s.onRange,
			OnYearHovered:   s.onHover,
			Scheduler:       s.loop,
			Resize:          s.resize,
			Style:           opts.Style,
			Logger:          opts.Logger,
		})
	})
	if err != nil {
		s.loop.Close()
		return nil, fmt.Errorf("failed to start session loop: %w", err)
	}
	return s, nil
}

func (s *Session) onRange(sel *timeline.SelectionRange) {
	metrics.CallbacksTotal.WithLabelValues("range").Inc()
	s.push(Event{Kind: "range", Selection: sel, At: time.Now()})
}

func (s *Session) onHover(year *int) {
	metrics.CallbacksTotal.WithLabelValues("hover").Inc()
	s.push(Event{Kind: "hover", Year: year, At: time.Now()})
}

func (s *Session) push(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if over := len(s.events) - maxQueuedEvents; over > 0 {
		s.events = append([]Event(nil), s.events[over:]...)
	}
}

// Drain returns and clears the queued notifications.
func (s *Session) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

// Do runs fn against the chart on the session loop. Notifications the
// chart posts while fn runs are delivered before Do returns; hover frames
// are not, they fire on the loop's next frame tick.
func (s *Session) Do(fn func(c *timeline.Chart)) error {
	if err := s.loop.Do(func() { fn(s.chart) }); err != nil {
		return ErrSessionNotFound
	}
	// Posted callbacks were queued behind fn; this waits them out.
	if err := s.loop.Do(func() {}); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

// Resize updates the container width and fires the resize signal. The
// chart re-measures on its own loop.
func (s *Session) Resize(width float64) error {
	return s.Do(func(*timeline.Chart) {
		s.width = width
		s.resize.Notify()
	})
}

// AllowPointer reports whether another pointer event fits the session's
// rate budget.
func (s *Session) AllowPointer() bool {
	return s.limiter.Allow()
}

// State snapshots the chart.
func (s *Session) State() (timeline.State, error) {
	var st timeline.State
	err := s.Do(func(c *timeline.Chart) { st = c.State() })
	return st, err
}

// SVG renders the chart.
func (s *Session) SVG() (string, error) {
	var svg string
	err := s.Do(func(c *timeline.Chart) { svg = c.SVG() })
	return svg, err
}

func (s *Session) close() {
	_ = s.loop.Do(func() { s.chart.Dispose() })
	s.loop.Close()
}

// StoreOptions configures sessions created by a Store.
type StoreOptions struct {
	Size          int
	PointerRate   rate.Limit
	PointerBurst  int
	FrameInterval time.Duration
	Style         timeline.Style
	Logger        *log.Logger
}

// Store keeps the most recently used sessions. Sessions pushed out of the
// cache, deleted or purged on Close are disposed.
type Store struct {
	opts    StoreOptions
	records []timeline.Record

	mu       sync.Mutex
	cache    *lru.Cache[string, *Session]
	closeWhy string
}

// NewStore builds a session store over a shared record set.
func NewStore(records []timeline.Record, opts StoreOptions) (*Store, error) {
	if opts.PointerRate <= 0 {
		opts.PointerRate = rate.Inf
	}
	if opts.PointerBurst <= 0 {
		opts.PointerBurst = 1
	}
	st := &Store{opts: opts, records: records, closeWhy: "evicted"}

	cache, err := lru.NewWithEvict[string, *Session](opts.Size, st.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	st.cache = cache
	return st, nil
}

// onEvict runs with the store lock held, from Add, Remove or Purge.
func (st *Store) onEvict(_ string, s *Session) {
	s.close()
	metrics.SessionsActive.Dec()
	metrics.SessionsClosedTotal.WithLabelValues(st.closeWhy).Inc()
}

// Records returns the shared record set.
func (st *Store) Records() []timeline.Record {
	return st.records
}

// Create starts a new session for a container of the given width.
func (st *Store) Create(width float64) (*Session, error) {
	s, err := newSession(width, st.records, st.opts)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	st.closeWhy = "evicted"
	st.cache.Add(s.ID, s)
	st.mu.Unlock()

	metrics.SessionsCreatedTotal.Inc()
	metrics.SessionsActive.Inc()
	return s, nil
}

// Get looks up a session and marks it recently used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete disposes a session.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.closeWhy = "deleted"
	defer func() { st.closeWhy = "evicted" }()
	return st.cache.Remove(id)
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Len()
}

// Close disposes every session.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.closeWhy = "shutdown"
	st.cache.Purge()
}
