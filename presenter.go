package arthax

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// User facing messages shared by all presenters.
const (
	MsgNoIdentity   = "Please set your phone number first."
	MsgNetworkError = "Network error. Please try again."
	MsgNetworkView  = "Network error: the Artha-X service could not be reached."
	MsgLoginHint    = "Complete the login at %s and try again."
)

// Notifier receives user feedback. NotificationCenter implements it.
type Notifier interface {
	Notify(text string, kind Kind)
}

// Feature is the declarative description of one presenter. The five features
// differ only by these fields.
type Feature struct {
	Name           string // trigger identifier
	Title          string
	Endpoint       string
	Fields         []Field
	DefaultMessage string // error message when the backend gives none
	SuccessMessage string
	// Loading returns the placeholder shown while the exchange is in flight.
	Loading func(in Input, currency string) string
	// Render turns a success envelope into a view. An error means the envelope
	// does not have the expected shape.
	Render func(env *Envelope) (View, error)
}

// Presenter binds a Feature trigger to one exchange and one region.
// Trigger and the resolution callbacks must run on the loop.
type Presenter struct {
	Feature

	identity     func() (Identity, bool)
	caller       Caller
	loop         *Loop
	notifier     Notifier
	region       Region
	currency     string
	discardStale bool

	generation int
	lastErr    error
}

// Validate checks the preconditions: an identity first, then every field in
// order. It returns the first failure.
func (p *Presenter) Validate(values Values) (Input, error) {
	id, ok := p.identity()
	if !ok {
		return Input{}, &ValidationError{Field: "identity", Message: MsgNoIdentity}
	}
	in := Input{Identity: id, Values: make(map[string]any, len(p.Fields))}
	for _, f := range p.Fields {
		v, err := f.parse(values[f.Name])
		if err != nil {
			return Input{}, err
		}
		in.Values[f.Name] = v
	}
	return in, nil
}

// Trigger validates values and issues the exchange. A validation failure is
// notified and returned; no request is issued and the region is untouched.
func (p *Presenter) Trigger(ctx context.Context, values Values) error {
	in, err := p.Validate(values)
	if err != nil {
		p.lastErr = err
		var ve *ValidationError
		if errors.As(err, &ve) {
			p.notifier.Notify(ve.Message, KindError)
		} else {
			p.notifier.Notify(err.Error(), KindError)
		}
		return err
	}

	loading := "Loading..."
	if p.Loading != nil {
		loading = p.Loading(in, p.currency)
	}
	p.region.Render(View{Loading: loading})

	p.generation++
	gen := p.generation
	req := Request{
		Endpoint:       p.Endpoint,
		Payload:        in.Payload(),
		DefaultMessage: p.DefaultMessage,
	}
	Go(ctx, p.loop, p.caller, req, func(o Outcome) {
		if p.discardStale && gen != p.generation {
			log.Printf("%s: discarding stale response %d (current is %d)", p.Name, gen, p.generation)
			return
		}
		p.resolve(o)
	})
	return nil
}

// resolve maps an outcome onto the region and one notification.
func (p *Presenter) resolve(o Outcome) {
	p.lastErr = o.Err
	switch o.Kind {
	case Success:
		v, err := p.Render(o.Envelope)
		if err != nil {
			log.Printf("%s: unexpected response shape: %v", p.Name, err)
			p.lastErr = &ApplicationError{Status: StatusSuccess, Message: p.DefaultMessage}
			p.region.Render(View{Error: p.DefaultMessage})
			p.notifier.Notify(p.DefaultMessage, KindError)
			return
		}
		p.region.Render(v)
		p.notifier.Notify(p.SuccessMessage, KindSuccess)

	case ApplicationFailure:
		msg := o.Message()
		v := View{Error: msg}
		var appErr *ApplicationError
		if errors.As(o.Err, &appErr) {
			switch {
			case appErr.LoginURL != "":
				v.Hint = fmt.Sprintf(MsgLoginHint, appErr.LoginURL)
			case appErr.Details != "":
				v.Hint = appErr.Details
			}
		}
		p.region.Render(v)
		p.notifier.Notify(msg, KindError)

	default:
		log.Printf("%s: %v", p.Name, o.Err)
		p.region.Render(View{Error: MsgNetworkView})
		p.notifier.Notify(MsgNetworkError, KindError)
	}
}

// Err returns the error of the last trigger, nil if it succeeded.
func (p *Presenter) Err() error { return p.lastErr }
