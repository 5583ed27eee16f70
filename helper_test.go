package arthax

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// recordingRegion keeps every view rendered into it.
type recordingRegion struct {
	views []View
}

func (r *recordingRegion) Render(v View) { r.views = append(r.views, v) }

// last returns the current content of the region.
func (r *recordingRegion) last() (View, bool) {
	if len(r.views) == 0 {
		return View{}, false
	}
	return r.views[len(r.views)-1], true
}

type recordingSurface struct {
	regions map[string]*recordingRegion
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{regions: make(map[string]*recordingRegion)}
}

func (s *recordingSurface) Region(name string) Region { return s.region(name) }

func (s *recordingSurface) region(name string) *recordingRegion {
	r, ok := s.regions[name]
	if !ok {
		r = &recordingRegion{}
		s.regions[name] = r
	}
	return r
}

// recordingToasts keeps every notification shown.
type recordingToasts struct {
	mu    sync.Mutex
	shown []Notification
}

func (t *recordingToasts) Show(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown = append(t.shown, n)
}
func (t *recordingToasts) Fade(Notification)   {}
func (t *recordingToasts) Remove(Notification) {}

func (t *recordingToasts) count(kind Kind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.shown {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (t *recordingToasts) total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.shown)
}

// fakeCaller answers every request with reply and records the requests.
type fakeCaller struct {
	mu       sync.Mutex
	requests []Request
	reply    func(req Request) Outcome
}

func (c *fakeCaller) Call(_ context.Context, req Request) Outcome {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	return c.reply(req)
}

func (c *fakeCaller) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// replyJSON returns a reply func classifying body the way the Gateway does.
func replyJSON(t *testing.T, body string) func(Request) Outcome {
	t.Helper()
	return func(req Request) Outcome {
		env, err := decodeEnvelope([]byte(body))
		if err != nil {
			return Outcome{Kind: TransportFailure, Err: &TransportError{Endpoint: req.Endpoint, Cause: err}}
		}
		if env.Status == StatusSuccess {
			return Outcome{Kind: Success, Envelope: env}
		}
		msg := env.Message
		if msg == "" {
			msg = req.DefaultMessage
		}
		return Outcome{Kind: ApplicationFailure, Envelope: env, Err: &ApplicationError{Status: env.Status, Message: msg, LoginURL: env.LoginURL}}
	}
}

// payload returns the JSON body of the i-th request.
func (c *fakeCaller) payload(t *testing.T, i int) map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(c.requests[i].Payload)
	if err != nil {
		t.Fatalf("cannot encode payload: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("cannot decode payload: %v", err)
	}
	return m
}

// recordingLog is a LogView.
type recordingLog struct {
	appended []Message
	scrolls  int
}

func (l *recordingLog) Append(m Message) { l.appended = append(l.appended, m) }
func (l *recordingLog) ScrollToEnd()     { l.scrolls++ }

type recordingComposer struct{ cleared int }

func (c *recordingComposer) Clear() { c.cleared++ }

type testApp struct {
	*App
	surface  *recordingSurface
	toasts   *recordingToasts
	caller   *fakeCaller
	log      *recordingLog
	composer *recordingComposer
}

// newTestApp returns a running App without identity. Notifications never
// expire during the test.
func newTestApp(t *testing.T, reply func(Request) Outcome) *testApp {
	t.Helper()
	ta := &testApp{
		surface:  newRecordingSurface(),
		toasts:   &recordingToasts{},
		caller:   &fakeCaller{reply: reply},
		log:      &recordingLog{},
		composer: &recordingComposer{},
	}
	ta.App = New(NewMemoryStorage(), ta.caller, ta.surface, ta.toasts, ta.log, ta.composer, Options{})
	ta.App.Notifications.schedule = func(time.Duration, func()) {}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ta.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ta
}

func (ta *testApp) login(t *testing.T, id string) {
	t.Helper()
	if _, err := ta.Identity.Set(id); err != nil {
		t.Fatalf("Identity.Set(%q) unexpected error: %v", id, err)
	}
}
