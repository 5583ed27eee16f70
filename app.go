package arthax

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownTrigger is returned when dispatching a trigger that is not in the
// Features table.
var ErrUnknownTrigger = errors.New("unknown trigger")

// Options configure an App.
type Options struct {
	Currency string // used in loading placeholders, "INR" by default
	// DiscardStale drops the response of an exchange when a newer one was
	// issued by the same presenter. Off by default: the last resolved wins.
	DiscardStale bool
}

// App is the controller object. It owns the application state (identity,
// notifications, conversation) and hands presenters an identity accessor.
type App struct {
	Identity      *IdentityStore
	Notifications *NotificationCenter
	Loop          *Loop
	Conversation  *Conversation

	caller     Caller
	presenters map[string]*Presenter
}

// New wires an App. composer and logView may be nil.
func New(storage Storage, caller Caller, surface Surface, toasts ToastSink, logView LogView, composer Composer, opts Options) *App {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	a := &App{
		Identity:      NewIdentityStore(storage),
		Notifications: NewNotificationCenter(toasts),
		Loop:          NewLoop(),
		caller:        caller,
		presenters:    make(map[string]*Presenter, len(Features)),
	}
	for _, f := range Features {
		a.presenters[f.Name] = &Presenter{
			Feature:      f,
			identity:     a.Identity.Get,
			caller:       caller,
			loop:         a.Loop,
			notifier:     a.Notifications,
			region:       surface.Region(f.Name),
			currency:     opts.Currency,
			discardStale: opts.DiscardStale,
		}
	}
	a.Conversation = &Conversation{
		identity: a.Identity.Get,
		caller:   caller,
		loop:     a.Loop,
		notifier: a.Notifications,
		view:     logView,
		composer: composer,
	}
	return a
}

// Run processes triggers and resolutions until ctx is done.
func (a *App) Run(ctx context.Context) error { return a.Loop.Run(ctx) }

// Wait blocks until every trigger has been handled and every exchange resolved.
func (a *App) Wait() { a.Loop.Wait() }

// Presenter returns the presenter of a trigger.
func (a *App) Presenter(name string) (*Presenter, bool) {
	p, ok := a.presenters[name]
	return p, ok
}

// Dispatch fires a trigger. The presenter runs on the loop; Dispatch returns
// immediately.
func (a *App) Dispatch(ctx context.Context, name string, values Values) error {
	p, ok := a.presenters[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTrigger, name)
	}
	a.Loop.Post(func() { p.Trigger(ctx, values) })
	return nil
}

// Say submits a chat message on the loop.
func (a *App) Say(ctx context.Context, text string) {
	a.Loop.Post(func() { a.Conversation.Submit(ctx, text) })
}

// RequireIdentity returns the persisted identity or blocks, prompting for one
// until a candidate is accepted. Each rejected candidate is notified.
func (a *App) RequireIdentity(prompter IdentityPrompter) (Identity, error) {
	if id, ok := a.Identity.Get(); ok {
		return id, nil
	}
	for {
		candidate, err := prompter.PromptIdentity()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Identity{}, errors.New("no identity provided")
			}
			return Identity{}, err
		}
		id, err := a.Identity.Set(candidate)
		if err == nil {
			a.Notifications.Notify("Phone number saved.", KindSuccess)
			return id, nil
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return Identity{}, err
		}
		a.Notifications.Notify("Please enter a valid phone number.", KindError)
	}
}
