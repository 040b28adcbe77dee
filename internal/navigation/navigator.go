// Package navigation is the in-process routing boundary: the current route,
// a browser-like history with a movable pointer, leave guards and unload
// listeners.
//
// The history pointer (Location) and the route the application shows
// (Current) are tracked separately. A back navigation moves the pointer
// before leave guards run, the way a browser does; when a guard cancels,
// the pointer stays moved until Forward restores it.
package navigation

import (
	"errors"
	"strings"
	"sync"

	"github.com/loykin/servicecall/internal/common"
)

var (
	// ErrCancelled is returned when a leave guard rejected the navigation.
	ErrCancelled = errors.New("navigation: cancelled by leave guard")
	// ErrNoHistory is returned by Back/Forward at either end of the history.
	ErrNoHistory = errors.New("navigation: no history entry")
)

// LeaveGuard is consulted before leaving from for to. Returning false
// cancels the navigation.
type LeaveGuard func(from, to string) bool

// UnloadEvent is passed to unload listeners when the process context ends.
type UnloadEvent struct {
	prevented   bool
	ReturnValue string
}

// PreventDefault asks for the unload to be confirmed.
func (e *UnloadEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether any listener called PreventDefault.
func (e *UnloadEvent) DefaultPrevented() bool { return e.prevented }

// UnloadListener observes an unload.
type UnloadListener func(*UnloadEvent)

// Options configures a Navigator. InitialPath defaults to "/".
type Options struct {
	InitialPath string
}

type guardEntry struct {
	id uint64
	fn LeaveGuard
}

type unloadEntry struct {
	id uint64
	fn UnloadListener
}

// Navigator is safe for concurrent use. Guards and listeners are invoked
// without holding the internal lock, so they may call back into the
// Navigator.
type Navigator struct {
	mu      sync.Mutex
	entries []string
	index   int
	current string

	seq     uint64
	guards  []guardEntry
	unloads []unloadEntry
}

// New creates a Navigator positioned at opt.InitialPath.
func New(opt Options) *Navigator {
	p := sanitizePath(strings.TrimSpace(opt.InitialPath))
	if p == "" {
		p = "/"
	}
	return &Navigator{entries: []string{p}, current: p}
}

// Current returns the route the application is showing.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Location returns the history entry under the pointer.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries[n.index]
}

// Navigate pushes to onto the history after the leave guards accept it.
// Forward entries beyond the pointer are discarded.
func (n *Navigator) Navigate(to string) error {
	to = sanitizePath(to)
	from := n.Current()
	if to == from {
		return nil
	}
	if !n.allowLeave(from, to) {
		return ErrCancelled
	}
	n.mu.Lock()
	n.entries = append(n.entries[:n.index+1], to)
	n.index = len(n.entries) - 1
	n.current = to
	n.mu.Unlock()
	common.GetLogger().WithComponent("navigation").Debug("navigated", "from", from, "to", to)
	return nil
}

// Replace swaps the current history entry for to after the guards accept it.
func (n *Navigator) Replace(to string) error {
	to = sanitizePath(to)
	from := n.Current()
	if to == from {
		return nil
	}
	if !n.allowLeave(from, to) {
		return ErrCancelled
	}
	n.mu.Lock()
	n.entries[n.index] = to
	n.current = to
	n.mu.Unlock()
	return nil
}

// Back moves the pointer one entry back, then consults the guards.
func (n *Navigator) Back() error {
	return n.step(-1)
}

// Forward moves the pointer one entry forward. Landing on the route the
// application already shows only resynchronises the pointer.
func (n *Navigator) Forward() error {
	return n.step(1)
}

func (n *Navigator) step(delta int) error {
	n.mu.Lock()
	next := n.index + delta
	if next < 0 || next >= len(n.entries) {
		n.mu.Unlock()
		return ErrNoHistory
	}
	n.index = next
	to := n.entries[next]
	from := n.current
	n.mu.Unlock()

	if to == from {
		return nil
	}
	if !n.allowLeave(from, to) {
		return ErrCancelled
	}
	n.mu.Lock()
	n.current = to
	n.mu.Unlock()
	return nil
}

func (n *Navigator) allowLeave(from, to string) bool {
	n.mu.Lock()
	guards := make([]guardEntry, len(n.guards))
	copy(guards, n.guards)
	n.mu.Unlock()
	for _, g := range guards {
		if !g.fn(from, to) {
			common.GetLogger().WithComponent("navigation").Debug("navigation cancelled", "from", from, "to", to)
			return false
		}
	}
	return true
}

// OnLeave registers a leave guard. Guards run in registration order.
func (n *Navigator) OnLeave(g LeaveGuard) (remove func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := n.seq
	n.guards = append(n.guards, guardEntry{id: id, fn: g})
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, e := range n.guards {
			if e.id == id {
				n.guards = append(n.guards[:i], n.guards[i+1:]...)
				return
			}
		}
	}
}

// OnUnload registers an unload listener.
func (n *Navigator) OnUnload(l UnloadListener) (remove func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := n.seq
	n.unloads = append(n.unloads, unloadEntry{id: id, fn: l})
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, e := range n.unloads {
			if e.id == id {
				n.unloads = append(n.unloads[:i], n.unloads[i+1:]...)
				return
			}
		}
	}
}

// Unload runs the unload listeners. It returns the confirmation string and
// true when any listener prevented the default.
func (n *Navigator) Unload() (string, bool) {
	n.mu.Lock()
	listeners := make([]unloadEntry, len(n.unloads))
	copy(listeners, n.unloads)
	n.mu.Unlock()

	ev := &UnloadEvent{}
	for _, l := range listeners {
		l.fn(ev)
	}
	if !ev.DefaultPrevented() {
		return "", false
	}
	return ev.ReturnValue, true
}

// Listeners reports the number of registered guards and unload listeners.
func (n *Navigator) Listeners() (guards, unloads int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.guards), len(n.unloads)
}

func sanitizePath(p string) string {
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	// collapse trailing slash except root
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
