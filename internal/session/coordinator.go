// Package session runs the logout sequence when the server reports that the
// held credential expired. A process-wide latch makes sure the sequence runs
// once per expiry episode; only a fresh login resets it.
package session

import (
	"context"
	"sync"

	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/metrics"
)

// Router is the routing boundary the coordinator consumes.
type Router interface {
	Current() string
	Navigate(path string) error
}

// CredentialClearer invalidates the stored credential.
type CredentialClearer interface {
	Clear(ctx context.Context) error
}

// Notifier surfaces the expiry message to the user.
type Notifier func(ctx context.Context, app AppContext)

// LogoutHook performs the server-side part of a logout.
type LogoutHook func(ctx context.Context, app AppContext) error

// Coordinator is safe for concurrent use.
type Coordinator struct {
	Paths       Paths
	Router      Router
	Credentials CredentialClearer
	Notifier    Notifier
	LogoutHook  LogoutHook

	mu        sync.Mutex
	triggered bool
}

// TriggerLogout runs the logout sequence unless it already ran for this
// episode. It never fails; step errors are logged.
func (c *Coordinator) TriggerLogout(ctx context.Context, showMessage bool) {
	logger := common.GetLogger().WithComponent("session")

	c.mu.Lock()
	if c.triggered {
		c.mu.Unlock()
		logger.Debug("logout already triggered")
		return
	}
	c.triggered = true
	c.mu.Unlock()

	if c.Router == nil {
		logger.Warn("no router configured, skipping logout sequence")
		return
	}
	current := c.Router.Current()
	app := c.Paths.Classify(current)
	login := c.Paths.LoginPath(app)
	if stripQuery(current) == login {
		logger.Debug("already on login page", "app", string(app), "path", current)
		return
	}

	logger.Info("session expired, logging out", "app", string(app), "path", current)
	metrics.LogoutsTotal.WithLabelValues(string(app)).Inc()

	if c.LogoutHook != nil {
		if err := c.LogoutHook(ctx, app); err != nil {
			logger.Warn("server logout failed", "error", err)
		}
	}
	if c.Credentials != nil {
		if err := c.Credentials.Clear(ctx); err != nil {
			logger.Error("failed to clear credential", "error", err)
		}
	}
	if showMessage && c.Notifier != nil {
		c.Notifier(ctx, app)
	}
	if err := c.Router.Navigate(login); err != nil {
		logger.Warn("navigation to login failed", "to", login, "error", err)
	}
}

// Triggered reports whether the latch is set.
func (c *Coordinator) Triggered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggered
}

// Reset clears the latch after a successful login.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.triggered = false
	c.mu.Unlock()
}
