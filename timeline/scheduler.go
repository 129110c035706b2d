package timeline

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler is the event loop a chart runs on. All callbacks it runs must
// execute on the chart's goroutine.
type Scheduler interface {
	// RequestFrame runs fn at the next rendering frame.
	RequestFrame(fn func()) (cancel func())
	// AfterFunc runs fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) (cancel func())
	// Post runs fn on the next tick, after the current task returns.
	Post(fn func())
}

// ErrLoopClosed is returned by Loop.Do after Close.
var ErrLoopClosed = errors.New("timeline: loop closed")

// DefaultFrameInterval approximates a 60 Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// --- Manual scheduler ---

// ManualScheduler is a deterministic Scheduler driven by the caller. Time
// only moves on Advance and frames only run on Flush. It is not safe for
// concurrent use.
type ManualScheduler struct {
	now    time.Duration
	nextID uint64
	frames []*manualTask
	posted []func()
	timers []*manualTask
}

type manualTask struct {
	id        uint64
	due       time.Duration
	fn        func()
	cancelled bool
}

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements Scheduler.
func (m *ManualScheduler) RequestFrame(fn func()) func() {
	m.nextID++
	t := &manualTask{id: m.nextID, fn: fn}
	m.frames = append(m.frames, t)
	return func() { t.cancelled = true }
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	m.nextID++
	t := &manualTask{id: m.nextID, due: m.now + d, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Post implements Scheduler.
func (m *ManualScheduler) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

// Now returns the virtual time elapsed since creation.
func (m *ManualScheduler) Now() time.Duration { return m.now }

// PendingFrames counts frame callbacks that would run on the next Flush.
func (m *ManualScheduler) PendingFrames() int {
	n := 0
	for _, t := range m.frames {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// PendingTimers counts timers that have not fired or been cancelled.
func (m *ManualScheduler) PendingTimers() int {
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Flush runs one tick: posted tasks, then every frame requested before the
// call, then anything those frames posted.
func (m *ManualScheduler) Flush() {
	m.drainPosted()
	frames := m.frames
	m.frames = nil
	for _, t := range frames {
		if !t.cancelled {
			t.fn()
		}
	}
	m.drainPosted()
}

// Advance moves virtual time forward, firing due timers in order.
func (m *ManualScheduler) Advance(d time.Duration) {
	target := m.now + d
	for {
		m.drainPosted()
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.cancelled = true
		next.fn()
	}
	m.now = target
	m.drainPosted()
	m.compactTimers()
}

func (m *ManualScheduler) nextDue(limit time.Duration) *manualTask {
	var best *manualTask
	for _, t := range m.timers {
		if t.cancelled || t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}

func (m *ManualScheduler) compactTimers() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.timers = live
}

func (m *ManualScheduler) drainPosted() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// --- Goroutine event loop ---

// Loop is a Scheduler backed by a single goroutine. Every task, frame and
// timer callback runs on that goroutine, so a chart driven only through
// Loop.Do never needs its own locking.
type Loop struct {
	interval time.Duration

	mu          sync.Mutex
	queue       []func()
	frames      map[uint64]func()
	frameOrder  []uint64
	frameArmed  bool
	nextFrameID uint64

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop starts a loop whose frames fire every interval (DefaultFrameInterval
// when interval is not positive).
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	l := &Loop{
		interval: interval,
		frames:   make(map[uint64]func()),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Post implements Scheduler. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestFrame implements Scheduler.
func (l *Loop) RequestFrame(fn func()) func() {
	l.mu.Lock()
	l.nextFrameID++
	id := l.nextFrameID
	l.frames[id] = fn
	l.frameOrder = append(l.frameOrder, id)
	arm := !l.frameArmed
	l.frameArmed = true
	l.mu.Unlock()

	if arm {
		time.AfterFunc(l.interval, func() { l.Post(l.runFrames) })
	}
	return func() {
		l.mu.Lock()
		delete(l.frames, id)
		l.mu.Unlock()
	}
}

func (l *Loop) runFrames() {
	l.mu.Lock()
	order := l.frameOrder
	frames := l.frames
	l.frameOrder = nil
	l.frames = make(map[uint64]func())
	l.frameArmed = false
	l.mu.Unlock()

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, id := range order {
		if fn, ok := frames[id]; ok {
			fn()
		}
	}
}

// AfterFunc implements Scheduler. fn runs on the loop goroutine.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	select {
	case <-l.quit:
		return ErrLoopClosed
	default:
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Close stops the loop goroutine. Pending tasks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}

// --- Resize signal ---

// ResizeSource delivers container resize notifications.
type ResizeSource interface {
	Subscribe(fn func()) (unsubscribe func())
}

// ResizeBroadcaster is a process-wide resize signal fanned out to every
// subscribed chart. It is safe for concurrent use.
type ResizeBroadcaster struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]func()
}

// NewResizeBroadcaster returns an empty broadcaster.
func NewResizeBroadcaster() *ResizeBroadcaster {
	return &ResizeBroadcaster{subs: make(map[uint64]func())}
}

// Subscribe implements ResizeSource.
func (b *ResizeBroadcaster) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Notify calls every current subscriber.
func (b *ResizeBroadcaster) Notify() {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of live subscriptions.
func (b *ResizeBroadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
