// Package dispatch performs calls against the portal API and turns every
// outcome into an envelope.
package dispatch

import (
	"context"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/endpoint"
	"github.com/loykin/servicecall/internal/envelope"
	"github.com/loykin/servicecall/internal/loader"
	"github.com/loykin/servicecall/internal/metrics"
)

// ExpiryHandler is invoked when the server reports an expired credential.
type ExpiryHandler interface {
	TriggerLogout(ctx context.Context, showMessage bool)
}

// Config wires a Dispatcher.
type Config struct {
	Client         *resty.Client
	Builder        endpoint.Builder
	Tracker        *loader.Tracker
	Credentials    CredentialSource
	Expiry         ExpiryHandler
	LogoutEndpoint string
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	client         *resty.Client
	builder        endpoint.Builder
	tracker        *loader.Tracker
	creds          CredentialSource
	expiry         ExpiryHandler
	logoutEndpoint string

	// escalations in flight; idle is signalled when pending drops to zero
	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	closed  bool
}

// New returns a Dispatcher. A nil client or tracker gets a fresh default.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		client:         cfg.Client,
		builder:        cfg.Builder,
		tracker:        cfg.Tracker,
		creds:          cfg.Credentials,
		expiry:         cfg.Expiry,
		logoutEndpoint: normalizeEndpoint(cfg.LogoutEndpoint),
	}
	d.idle = sync.NewCond(&d.mu)
	if d.client == nil {
		d.client = resty.New()
	}
	if d.tracker == nil {
		d.tracker = loader.NewTracker()
	}
	if d.logoutEndpoint == "" {
		d.logoutEndpoint = constants.DefaultLogoutEndpoint
	}
	return d
}

// Tracker returns the loader tracker bracketing calls.
func (d *Dispatcher) Tracker() *loader.Tracker { return d.tracker }

// Do performs req and returns its envelope. It never panics on transport
// or server errors and never returns nil.
func (d *Dispatcher) Do(ctx context.Context, req Request) *envelope.Envelope {
	method := req.method()
	hdrs := BuildHeaders(ctx, req.Action, d.creds)
	url := d.builder.BuildEscaped(req.Endpoint, req.PathParam, req.Query, req.Style)
	logger := common.GetLogger().WithComponent("dispatch").WithRequest(method, url)

	if !req.DisableLoader {
		tok := d.tracker.Begin(url)
		defer d.tracker.End(tok)
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		logger.Error("failed to encode request body", "error", err)
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeTransport).Inc()
		return envelope.FromTransportError(err)
	}

	r := d.client.R().SetContext(ctx).SetHeaders(hdrs)
	if body != nil {
		r.SetBody(body)
	}
	logger.Debug("sending request", "headers", maskedHeaders(hdrs), "body_size", len(body))

	resp, err := execByMethod(r, method, url)
	if err != nil || resp == nil || resp.RawResponse == nil {
		logger.Error("request failed without response", "error", err)
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeTransport).Inc()
		return envelope.FromTransportError(err)
	}

	status := resp.StatusCode()
	logger.Debug("received response", "status_code", status, "response_size", len(resp.Body()))
	if !resp.IsError() {
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return envelope.FromSuccess(status, resp.Body(), resp.Header(), req.binary())
	}

	env := envelope.FromFailure(status, resp.Body(), resp.Header())
	metrics.RequestsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	logger.Warn("request returned error status", "status_code", status, "message", env.Message)

	if status == constants.UnauthorizedStatus && !d.isLogoutEndpoint(req.Endpoint) {
		d.escalate(ctx)
	}
	return env
}

// escalate runs the expiry handler in the background on a context that
// outlives the caller's.
func (d *Dispatcher) escalate(ctx context.Context) {
	if d.expiry == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		common.GetLogger().WithComponent("dispatch").Debug("dispatcher closed, expiry not escalated")
		return
	}
	d.pending++
	d.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer d.finish()
		d.expiry.TriggerLogout(detached, true)
	}()
}

func (d *Dispatcher) finish() {
	d.mu.Lock()
	d.pending--
	if d.pending == 0 {
		d.idle.Broadcast()
	}
	d.mu.Unlock()
}

// Wait blocks until every started expiry escalation finished. It may be
// called concurrently with Do.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	for d.pending > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Close stops new escalations and waits for the running ones. Requests may
// still be sent; a 401 after Close is returned without logging out.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Wait()
}

func (d *Dispatcher) isLogoutEndpoint(ep string) bool {
	return strings.EqualFold(normalizeEndpoint(ep), d.logoutEndpoint)
}

func normalizeEndpoint(ep string) string {
	return strings.Trim(strings.TrimSpace(ep), "/")
}

func maskedHeaders(h map[string]string) map[string]any {
	m := common.GetGlobalMasker()
	out := make(map[string]any, len(h))
	for k, v := range h {
		out[k] = m.MaskValue(k, v)
	}
	return out
}
