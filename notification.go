package arthax

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// NotificationDisplay is how long a notification stays fully visible.
	NotificationDisplay = 3000 * time.Millisecond
	// NotificationFade is the fade transition after which it is removed.
	NotificationFade = 400 * time.Millisecond
)

// Kind of notification.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return "unknown"
}

// NotificationState tracks where a notification is in its lifecycle.
type NotificationState int

const (
	StateVisible NotificationState = iota
	StateFading
	StateRemoved
)

// Notification is a transient user-facing message.
type Notification struct {
	ID        string
	Text      string
	Kind      Kind
	CreatedAt time.Time
	State     NotificationState
}

// ToastSink draws notifications. Calls for one notification always come in the
// order Show, Fade, Remove.
type ToastSink interface {
	Show(n Notification)
	Fade(n Notification)
	Remove(n Notification)
}

// Scheduler runs f once after d. time.AfterFunc is the default.
type Scheduler func(d time.Duration, f func())

// NotificationCenter owns the lifecycle of notifications.
type NotificationCenter struct {
	mu       sync.Mutex
	items    []*Notification
	sink     ToastSink
	schedule Scheduler
	now      func() time.Time
}

// NotificationOption customizes a NotificationCenter.
type NotificationOption func(c *NotificationCenter)

// WithScheduler replaces the timer implementation.
func WithScheduler(s Scheduler) NotificationOption {
	return func(c *NotificationCenter) { c.schedule = s }
}

// WithClock replaces the clock used to stamp notifications.
func WithClock(now func() time.Time) NotificationOption {
	return func(c *NotificationCenter) { c.now = now }
}

// NewNotificationCenter returns a center drawing on sink. sink may be nil.
func NewNotificationCenter(sink ToastSink, opts ...NotificationOption) *NotificationCenter {
	c := &NotificationCenter{
		sink: sink,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify enqueues a notification after the current ones. It removes itself
// after NotificationDisplay+NotificationFade, independently of the others.
func (c *NotificationCenter) Notify(text string, kind Kind) {
	c.mu.Lock()
	n := &Notification{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      kind,
		CreatedAt: c.now(),
		State:     StateVisible,
	}
	c.items = append(c.items, n)
	shown := *n
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.Show(shown)
	}
	c.schedule(NotificationDisplay, func() { c.fade(n.ID) })
}

func (c *NotificationCenter) fade(id string) {
	c.mu.Lock()
	n := c.find(id)
	if n == nil || n.State != StateVisible {
		c.mu.Unlock()
		return
	}
	n.State = StateFading
	faded := *n
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.Fade(faded)
	}
	c.schedule(NotificationFade, func() { c.remove(id) })
}

func (c *NotificationCenter) remove(id string) {
	c.mu.Lock()
	var removed *Notification
	for i, n := range c.items {
		if n.ID == id {
			removed = n
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if removed == nil {
		c.mu.Unlock()
		return
	}
	removed.State = StateRemoved
	gone := *removed
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.Remove(gone)
	}
}

func (c *NotificationCenter) find(id string) *Notification {
	for _, n := range c.items {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Visible returns the fully visible notifications in arrival order.
func (c *NotificationCenter) Visible() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	var res []Notification
	for _, n := range c.items {
		if n.State == StateVisible {
			res = append(res, *n)
		}
	}
	return res
}

// Rendered returns the notifications still drawn, visible or fading.
func (c *NotificationCenter) Rendered() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		res = append(res, *n)
	}
	return res
}
