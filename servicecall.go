// Package servicecall is the shared network-call layer of the portal: every
// call goes through one dispatcher that attaches the stored credential,
// tracks the global busy signal, normalises results into an Envelope and
// logs the session out exactly once when the credential expires.
package servicecall

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/config"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/credential"
	"github.com/loykin/servicecall/internal/dispatch"
	"github.com/loykin/servicecall/internal/endpoint"
	"github.com/loykin/servicecall/internal/envelope"
	"github.com/loykin/servicecall/internal/guard"
	"github.com/loykin/servicecall/internal/httpc"
	"github.com/loykin/servicecall/internal/loader"
	"github.com/loykin/servicecall/internal/navigation"
	"github.com/loykin/servicecall/internal/routes"
	"github.com/loykin/servicecall/internal/session"
	"github.com/loykin/servicecall/internal/store"
	"golang.org/x/oauth2"
)

// Re-export commonly used types for public API

type (
	Config       = config.Config
	Request      = dispatch.Request
	Envelope     = envelope.Envelope
	Query        = endpoint.Query
	Param        = endpoint.Param
	Value        = endpoint.Value
	Style        = endpoint.Style
	Pagination   = endpoint.Pagination
	Credential   = credential.Credential
	AppContext   = session.AppContext
	Navigator    = navigation.Navigator
	UnsavedStore = guard.UnsavedStore
	Loading      = loader.Loading
)

const (
	PathSegment  = endpoint.PathSegment
	QuestionMark = endpoint.QuestionMark
	ResponseJSON = dispatch.ResponseJSON
	ResponseBlob = dispatch.ResponseBlob

	SectionTable          = loader.SectionTable
	SectionSecondaryTable = loader.SectionSecondaryTable
	SectionForm           = loader.SectionForm
)

// LoadConfig reads a config file (optional) and SERVICECALL_* variables.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// DecodePage decodes a paged list from the envelope's data member.
func DecodePage[T any](e *Envelope) (envelope.Page[T], error) { return envelope.DecodePage[T](e) }

// RowFlags returns n idle per-row busy flags keyed by row index.
func RowFlags(n int) map[int]bool { return loader.RowFlags(n) }

// OrderChanged reports whether a reorderable list differs from its baseline
// in membership or in any item's order value.
func OrderChanged[T any, K comparable](live, baseline []T, id func(T) K, order func(T) int) bool {
	return guard.OrderChanged(live, baseline, id, order)
}

type options struct {
	storage    credential.Storage
	navigator  *navigation.Navigator
	notifier   session.Notifier
	httpClient *resty.Client
	catalogue  *routes.Catalogue
}

// Option customises New.
type Option func(*options)

// WithStorage replaces the configured credential storage.
func WithStorage(s credential.Storage) Option { return func(o *options) { o.storage = s } }

// WithNavigator attaches the routing boundary used for logout redirects.
func WithNavigator(n *navigation.Navigator) Option { return func(o *options) { o.navigator = n } }

// WithNotifier receives the expiry message when a session is logged out.
func WithNotifier(fn func(ctx context.Context, app AppContext)) Option {
	return func(o *options) { o.notifier = fn }
}

// WithHTTPClient replaces the resty client built from the client config.
func WithHTTPClient(c *resty.Client) Option { return func(o *options) { o.httpClient = c } }

// WithRoutes sets the route catalogue used by CallRoute.
func WithRoutes(c *routes.Catalogue) Option { return func(o *options) { o.catalogue = c } }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Client wires the request layer. It is safe for concurrent use.
type Client struct {
	cfg        *Config
	closer     io.Closer
	accessor   *credential.Accessor
	tracker    *loader.Tracker
	navigator  *navigation.Navigator
	coord      *session.Coordinator
	dispatcher *dispatch.Dispatcher
	catalogue  *routes.Catalogue
	unsaved    *guard.UnsavedStore
}

// New validates cfg and builds a Client.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("servicecall: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := common.GetLogger().WithComponent("client")

	codec, err := credential.NewCodec(cfg.EncodeKey)
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, closer: nopCloser{}, unsaved: guard.NewUnsavedStore()}
	storage := o.storage
	if storage == nil {
		s, closer, err := store.Open(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		storage, c.closer = s, closer
	}
	c.accessor = credential.NewAccessor(storage, codec)

	c.catalogue = o.catalogue
	if c.catalogue == nil && cfg.RoutesFile != "" {
		cat, err := routes.Load(cfg.RoutesFile)
		if err != nil {
			_ = c.closer.Close()
			return nil, err
		}
		c.catalogue = cat
	}

	c.navigator = o.navigator
	if c.navigator == nil {
		c.navigator = navigation.New(navigation.Options{})
	}

	client := o.httpClient
	if client == nil {
		client = httpc.New(cfg.Client)
	}
	c.tracker = loader.NewTracker()

	notifier := o.notifier
	if notifier == nil {
		notifier = func(_ context.Context, app AppContext) {
			logger.Warn(constants.ExpiryMessage, "app", string(app))
		}
	}
	c.coord = &session.Coordinator{
		Paths:       cfg.Paths,
		Router:      c.navigator,
		Credentials: c.accessor,
		Notifier:    notifier,
		LogoutHook:  c.serverLogout,
	}
	c.dispatcher = dispatch.New(dispatch.Config{
		Client:         client,
		Builder:        endpoint.NewBuilder(cfg.APIBaseURL, cfg.APIPrefix),
		Tracker:        c.tracker,
		Credentials:    c.accessor,
		Expiry:         c.coord,
		LogoutEndpoint: cfg.LogoutEndpoint,
	})
	logger.Debug("client ready", "base_url", cfg.APIBaseURL, "storage", cfg.Storage.Type)
	return c, nil
}

// Call dispatches req. The returned envelope is never nil.
func (c *Client) Call(ctx context.Context, req Request) *Envelope {
	return c.dispatcher.Do(ctx, req)
}

// CallRoute dispatches req against the endpoint and method registered under
// name in the route catalogue.
func (c *Client) CallRoute(ctx context.Context, name string, req Request) (*Envelope, error) {
	r, err := c.catalogue.Lookup(name)
	if err != nil {
		return nil, err
	}
	req.Endpoint = r.Endpoint
	req.Method = r.Method
	return c.dispatcher.Do(ctx, req), nil
}

// Route returns the catalogue entry registered under name.
func (c *Client) Route(name string) (routes.Route, error) { return c.catalogue.Lookup(name) }

// Routes lists the catalogue's route names, sorted.
func (c *Client) Routes() []string { return c.catalogue.Names() }

// Busy reports whether any tracked request is in flight.
func (c *Client) Busy() bool { return c.tracker.Busy() }

// OnBusy subscribes to busy transitions.
func (c *Client) OnBusy(fn func(busy bool)) (unsubscribe func()) { return c.tracker.Subscribe(fn) }

// Login posts body to the login endpoint. On success the credential found
// under data is stored and the logout latch is reset.
func (c *Client) Login(ctx context.Context, body any) (*Envelope, error) {
	env := c.dispatcher.Do(ctx, Request{Endpoint: c.cfg.LoginEndpoint, Method: http.MethodPost, Body: body})
	if !env.Success {
		return env, nil
	}
	var cred Credential
	if err := env.DecodeData(&cred); err != nil {
		return env, fmt.Errorf("servicecall: login response: %w", err)
	}
	if cred.IsZero() {
		return env, fmt.Errorf("servicecall: login response carries no token")
	}
	if err := c.accessor.Save(ctx, cred); err != nil {
		return env, err
	}
	c.coord.Reset()
	common.GetLogger().WithComponent("client").Info("logged in", "token_type", cred.Type())
	return env, nil
}

// SetToken stores a token obtained outside Login, e.g. from an SSO
// exchange, and resets the logout latch.
func (c *Client) SetToken(ctx context.Context, tok *oauth2.Token) error {
	cred := credential.FromOAuth2(tok)
	if cred.IsZero() {
		return fmt.Errorf("servicecall: token is empty")
	}
	if err := c.accessor.Save(ctx, cred); err != nil {
		return err
	}
	c.coord.Reset()
	return nil
}

// Logout calls the logout endpoint and clears the stored credential even
// when the server call fails.
func (c *Client) Logout(ctx context.Context) (*Envelope, error) {
	env := c.dispatcher.Do(ctx, Request{Endpoint: c.cfg.LogoutEndpoint, Method: http.MethodPost})
	if err := c.accessor.Clear(ctx); err != nil {
		return env, err
	}
	return env, nil
}

func (c *Client) serverLogout(ctx context.Context, app AppContext) error {
	env := c.dispatcher.Do(ctx, Request{Endpoint: c.cfg.LogoutEndpoint, Method: http.MethodPost, DisableLoader: true})
	if !env.Success && env.Status != http.StatusUnauthorized {
		return fmt.Errorf("logout returned %d: %s", env.Status, env.Message)
	}
	return nil
}

// Credential returns the stored credential.
func (c *Client) Credential(ctx context.Context) (Credential, bool, error) {
	return c.accessor.Load(ctx)
}

// RequireAdmin reports where an admin route must redirect to when no valid
// credential is held.
func (c *Client) RequireAdmin(ctx context.Context, path string) (string, bool) {
	cred, ok, err := c.accessor.Load(ctx)
	authorized := err == nil && ok && cred.Valid()
	return c.cfg.Paths.RequireAdmin(path, authorized)
}

// Navigator returns the routing boundary.
func (c *Client) Navigator() *Navigator { return c.navigator }

// Unsaved returns the shared unsaved-changes flag.
func (c *Client) Unsaved() *UnsavedStore { return c.unsaved }

// LoggedOut reports whether the expiry latch is set.
func (c *Client) LoggedOut() bool { return c.coord.Triggered() }

// Wait blocks until background logout sequences have finished.
func (c *Client) Wait() { c.dispatcher.Wait() }

// Close stops expiry handling, waits for running logout sequences and
// releases storage. It is safe to call while calls are in flight.
func (c *Client) Close() error {
	c.dispatcher.Close()
	return c.closer.Close()
}

// GuardForm installs an unsaved-changes guard for a form on the client's
// navigator, sharing the client's unsaved flag.
func GuardForm[T any](c *Client, confirm guard.Confirm, baseline T) *guard.Guard[T] {
	return guard.Install(c.navigator, c.unsaved, confirm, baseline)
}
