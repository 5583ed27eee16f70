package arthax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Request describes one exchange with the backend.
type Request struct {
	Endpoint       string // endpoint name, e.g. "suggest_category"
	Payload        any    // JSON encoded as the request body
	DefaultMessage string // used when an error envelope carries no message
}

// Caller issues a request and classifies its outcome. Gateway is the HTTP
// implementation, tests provide their own.
type Caller interface {
	Call(ctx context.Context, req Request) Outcome
}

// Gateway exchanges JSON with the Artha-X backend.
type Gateway struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// GatewayOption customizes a Gateway.
type GatewayOption func(g *Gateway)

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(hc *http.Client) GatewayOption {
	return func(g *Gateway) {
		if hc != nil {
			g.client = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout. The client
// is copied, a shared one like http.DefaultClient is left untouched.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		c := http.Client{}
		if g.client != nil {
			c = *g.client
		}
		c.Timeout = d
		g.client = &c
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) GatewayOption {
	return func(g *Gateway) {
		g.headers[key] = value
	}
}

// NewGateway returns a gateway to the backend at baseURL
// (e.g. "http://localhost:5000"). Endpoints are served under /api/.
func NewGateway(baseURL string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// BaseURL returns the backend address.
func (g *Gateway) BaseURL() string { return g.baseURL }

// URL returns the address of an endpoint.
func (g *Gateway) URL(endpoint string) string {
	return g.baseURL + "/api/" + strings.TrimLeft(endpoint, "/")
}

// Call POSTs req.Payload to the endpoint and classifies the response. It never
// returns without one of the three outcomes, and never retries.
func (g *Gateway) Call(ctx context.Context, req Request) Outcome {
	transportErr := func(err error) Outcome {
		return Outcome{Kind: TransportFailure, Err: &TransportError{Endpoint: req.Endpoint, Cause: err}}
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return transportErr(fmt.Errorf("cannot encode payload: %w", err))
	}

	addr := g.URL(req.Endpoint)
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return transportErr(fmt.Errorf("cannot create http request %q: %w", addr, err))
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range g.headers {
		r.Header.Set(k, v)
	}

	resp, err := g.client.Do(r)
	if err != nil {
		return transportErr(fmt.Errorf("cannot execute http request: %w", err))
	}
	defer resp.Body.Close()
	log.Printf("%v %v%v %v", r.Method, r.URL.Host, r.URL.Path, resp.Status)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return transportErr(fmt.Errorf("cannot read receiving http body: %w", err))
	}

	env, err := decodeEnvelope(buf.Bytes())
	if err != nil {
		log.Printf("%s replied %s: %q", req.Endpoint, resp.Status, truncate(buf.String(), 200))
		return transportErr(err)
	}

	if env.Status == StatusSuccess {
		return Outcome{Kind: Success, Envelope: env}
	}

	msg := env.Message
	if msg == "" {
		msg = req.DefaultMessage
	}
	return Outcome{
		Kind:     ApplicationFailure,
		Envelope: env,
		Err: &ApplicationError{
			Status:   env.Status,
			Message:  msg,
			LoginURL: env.LoginURL,
			Details:  env.Details,
		},
	}
}

// StatusHealthy is the status of a running backend.
const StatusHealthy = "healthy"

// Health checks that the backend is running with a GET on /health. It returns
// the backend message, a *TransportError if it cannot be reached, or an
// *ApplicationError if it reports another status.
func (g *Gateway) Health(ctx context.Context) (string, error) {
	addr := g.baseURL + "/health"
	transportErr := func(err error) error { return &TransportError{Endpoint: "health", Cause: err} }

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return "", transportErr(fmt.Errorf("cannot create http request %q: %w", addr, err))
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range g.headers {
		r.Header.Set(k, v)
	}

	resp, err := g.client.Do(r)
	if err != nil {
		return "", transportErr(fmt.Errorf("cannot execute http request: %w", err))
	}
	defer resp.Body.Close()
	log.Printf("%v %v%v %v", r.Method, r.URL.Host, r.URL.Path, resp.Status)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportErr(fmt.Errorf("cannot read receiving http body: %w", err))
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return "", transportErr(err)
	}
	if env.Status != StatusHealthy {
		return "", &ApplicationError{Status: env.Status, Message: fmt.Sprintf("backend is %q: %s", env.Status, env.Message)}
	}
	return env.Message, nil
}

// Go issues the call without blocking and runs done on loop once it resolves.
func Go(ctx context.Context, loop *Loop, c Caller, req Request, done func(Outcome)) {
	loop.Go(func() func() {
		o := c.Call(ctx, req)
		return func() { done(o) }
	})
}

// truncate keeps the first n bytes of s, cut on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
