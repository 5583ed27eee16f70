package arthax

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// StatusSuccess is the envelope status of a successful exchange.
const StatusSuccess = "success"

// StatusLoginRequired is reported by the backend when its data provider needs
// the user to log in through a browser first.
const StatusLoginRequired = "login_required"

// Envelope is the JSON object shared by every backend response:
//
//	{"status": "success"|..., "message": "...", <endpoint fields>}
type Envelope struct {
	Status   string
	Message  string
	LoginURL string
	Details  string
	fields   map[string]json.RawMessage
	body     []byte
}

// decodeEnvelope parses a response body. Anything else than a JSON object is an
// error. Non-string status or message are treated as absent.
func decodeEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	if fields == nil {
		return nil, errors.New("malformed response body: not a JSON object")
	}
	e := &Envelope{fields: fields, body: body}
	e.Status, _ = e.String("status")
	e.Message, _ = e.String("message")
	e.LoginURL, _ = e.String("login_url")
	e.Details, _ = e.String("details")
	return e, nil
}

// Raw returns the raw JSON of a top-level field.
func (e *Envelope) Raw(name string) (json.RawMessage, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

// String returns a top-level field if it is a JSON string.
func (e *Envelope) String(name string) (string, bool) {
	raw, ok := e.Raw(name)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Decode unmarshals a top-level field into v.
func (e *Envelope) Decode(name string, v any) error {
	raw, ok := e.Raw(name)
	if !ok {
		return fmt.Errorf("missing field %q", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid field %q: %w", name, err)
	}
	return nil
}

// Lookup evaluates a JSONPath expression (e.g. "$.result.emi") against the
// whole envelope.
func (e *Envelope) Lookup(path string) (any, error) {
	if e == nil {
		return nil, errors.New("no envelope")
	}
	var doc any
	if err := json.Unmarshal(e.body, &doc); err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	return v, nil
}

// OutcomeKind is the classification of an exchange.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	ApplicationFailure
	TransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ApplicationFailure:
		return "application error"
	case TransportFailure:
		return "transport error"
	}
	return "unknown"
}

// ApplicationError is reported when the backend answered with a status other
// than "success".
type ApplicationError struct {
	Status   string
	Message  string
	LoginURL string
	Details  string // technical explanation, when the backend gives one
}

func (e *ApplicationError) Error() string { return e.Message }

// TransportError is reported when the backend could not be reached or its
// response could not be read.
type TransportError struct {
	Endpoint string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Endpoint, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Outcome is the result of exactly one exchange.
type Outcome struct {
	Kind     OutcomeKind
	Envelope *Envelope // set for Success and ApplicationFailure
	Err      error     // *ApplicationError or *TransportError, nil on Success
}

// Message returns the user facing error message of a failed outcome.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(o.Err, &appErr) {
		return appErr.Message
	}
	return o.Err.Error()
}
