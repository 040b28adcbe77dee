package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/loykin/servicecall/internal/metrics"
	"github.com/loykin/servicecall/internal/navigation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"
)

type countingClearer struct {
	calls atomic.Int32
	err   error
}

func (c *countingClearer) Clear(context.Context) error {
	c.calls.Add(1)
	return c.err
}

type failingRouter struct{ path string }

func (r failingRouter) Current() string { return r.path }
func (r failingRouter) Navigate(string) error { return errors.New("router gone") }

func TestPaths_Classify(t *testing.T) {
	p := DefaultPaths()
	cases := map[string]AppContext{
		"/admin":             Admin,
		"/admin/studies/12":  Admin,
		"/administrator":     Portal,
		"/login":             Portal,
		"/":                  Portal,
		"/admin?x=1":         Admin,
		"/admin#top":         Admin,
		"/login?next=/admin": Portal,
	}
	for path, want := range cases {
		if got := p.Classify(path); got != want {
			t.Fatalf("Classify(%q) = %s, want %s", path, got, want)
		}
	}
	if (Paths{}).LoginPath(Admin) != "/admin/login" || (Paths{}).LoginPath(Portal) != "/login" {
		t.Fatalf("zero Paths should fall back to defaults")
	}
}

func TestPaths_RequireAdmin(t *testing.T) {
	p := DefaultPaths()
	if to, redirect := p.RequireAdmin("/admin/users", false); !redirect || to != "/admin/login" {
		t.Fatalf("unauthorized admin route => %q %v", to, redirect)
	}
	if _, redirect := p.RequireAdmin("/admin/users", true); redirect {
		t.Fatalf("authorized admin route must not redirect")
	}
	if _, redirect := p.RequireAdmin("/admin/login?next=/admin", false); redirect {
		t.Fatalf("login page must not redirect to itself")
	}
	if to, redirect := p.RequireAdmin("/admin?tab=users", false); !redirect || to != "/admin/login" {
		t.Fatalf("admin root with a query => %q %v", to, redirect)
	}
	if _, redirect := p.RequireAdmin("/dashboard", false); redirect {
		t.Fatalf("portal routes are not guarded here")
	}
}

func TestTriggerLogout_RunsSequenceOnce(t *testing.T) {
	nav := navigation.New(navigation.Options{InitialPath: "/admin/studies"})
	clearer := &countingClearer{}
	var hooks, notes atomic.Int32
	c := &Coordinator{
		Paths:       DefaultPaths(),
		Router:      nav,
		Credentials: clearer,
		Notifier:    func(context.Context, AppContext) { notes.Add(1) },
		LogoutHook: func(_ context.Context, app AppContext) error {
			if app != Admin {
				t.Errorf("hook app = %s, want admin", app)
			}
			hooks.Add(1)
			return nil
		},
	}
	before := testutil.ToFloat64(metrics.LogoutsTotal.WithLabelValues("admin"))

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			c.TriggerLogout(context.Background(), true)
			return nil
		})
	}
	_ = g.Wait()

	if hooks.Load() != 1 || clearer.calls.Load() != 1 || notes.Load() != 1 {
		t.Fatalf("sequence ran more than once: hooks=%d clears=%d notes=%d", hooks.Load(), clearer.calls.Load(), notes.Load())
	}
	if nav.Current() != "/admin/login" {
		t.Fatalf("expected navigation to admin login, got %q", nav.Current())
	}
	if !c.Triggered() {
		t.Fatalf("latch should be set")
	}
	if got := testutil.ToFloat64(metrics.LogoutsTotal.WithLabelValues("admin")) - before; got != 1 {
		t.Fatalf("logout counter delta = %v, want 1", got)
	}
}

func TestTriggerLogout_ResetAllowsNewEpisode(t *testing.T) {
	nav := navigation.New(navigation.Options{InitialPath: "/studies"})
	clearer := &countingClearer{}
	c := &Coordinator{Router: nav, Credentials: clearer}

	c.TriggerLogout(context.Background(), false)
	c.TriggerLogout(context.Background(), false)
	if clearer.calls.Load() != 1 || nav.Current() != "/login" {
		t.Fatalf("first episode: clears=%d current=%q", clearer.calls.Load(), nav.Current())
	}

	c.Reset()
	if c.Triggered() {
		t.Fatalf("Reset should clear the latch")
	}
	_ = nav.Navigate("/studies/3")
	c.TriggerLogout(context.Background(), false)
	if clearer.calls.Load() != 2 {
		t.Fatalf("second episode should run, clears=%d", clearer.calls.Load())
	}
}

func TestTriggerLogout_AlreadyOnLoginPage(t *testing.T) {
	nav := navigation.New(navigation.Options{InitialPath: "/login"})
	clearer := &countingClearer{}
	var guardCalls int
	nav.OnLeave(func(string, string) bool { guardCalls++; return true })
	c := &Coordinator{Router: nav, Credentials: clearer}

	c.TriggerLogout(context.Background(), true)

	if !c.Triggered() {
		t.Fatalf("latch must be set even on the login page")
	}
	if clearer.calls.Load() != 0 || guardCalls != 0 || nav.Current() != "/login" {
		t.Fatalf("no sequence expected: clears=%d guards=%d current=%q", clearer.calls.Load(), guardCalls, nav.Current())
	}
}

func TestTriggerLogout_StepErrorsAreSwallowed(t *testing.T) {
	clearer := &countingClearer{err: errors.New("disk full")}
	var notified bool
	c := &Coordinator{
		Router:      failingRouter{path: "/tasks"},
		Credentials: clearer,
		Notifier:    func(context.Context, AppContext) { notified = true },
		LogoutHook:  func(context.Context, AppContext) error { return errors.New("502") },
	}
	c.TriggerLogout(context.Background(), true)
	if clearer.calls.Load() != 1 || !notified {
		t.Fatalf("later steps must still run: clears=%d notified=%v", clearer.calls.Load(), notified)
	}
}

func TestTriggerLogout_ConcurrentWithReset(t *testing.T) {
	nav := navigation.New(navigation.Options{InitialPath: "/x"})
	c := &Coordinator{Router: nav}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.TriggerLogout(context.Background(), false) }()
		go func() { defer wg.Done(); c.Reset() }()
	}
	wg.Wait()
}
