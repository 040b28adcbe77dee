// Package guard protects unsaved form edits from being lost by navigation.
package guard

import (
	"reflect"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/navigation"
	"github.com/mohae/deepcopy"
)

// Host is the routing boundary the guard attaches to.
type Host interface {
	OnLeave(navigation.LeaveGuard) (remove func())
	OnUnload(navigation.UnloadListener) (remove func())
	Current() string
	Location() string
	Forward() error
}

// Confirm shows a blocking prompt and reports whether the user accepted.
type Confirm func(message string) bool

var compareOpts = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateEmpty(),
}

// Changed reports whether a and b differ structurally. Nil and empty
// slices or maps compare equal.
func Changed[T any](a, b T) bool {
	return !cmp.Equal(a, b, compareOpts...)
}

func clone[T any](v T) T {
	if c, ok := deepcopy.Copy(v).(T); ok {
		return c
	}
	return v
}

// Guard tracks one form's baseline and live snapshot. Snapshots are deep
// copies; unexported fields are not copied.
type Guard[T any] struct {
	mu       sync.Mutex
	baseline T
	live     T
	changed  bool
	disposed bool

	store   *UnsavedStore
	confirm Confirm
	host    Host
	removes []func()
}

// Install attaches a guard for baseline to host. The live snapshot starts
// equal to the baseline.
func Install[T any](host Host, store *UnsavedStore, confirm Confirm, baseline T) *Guard[T] {
	if store == nil {
		store = NewUnsavedStore()
	}
	g := &Guard[T]{
		baseline: clone(baseline),
		live:     clone(baseline),
		store:    store,
		confirm:  confirm,
		host:     host,
	}
	if host != nil {
		g.removes = append(g.removes, host.OnUnload(g.onUnload), host.OnLeave(g.onLeave))
	}
	return g
}

// Update replaces the live snapshot and recomputes the dirty state.
func (g *Guard[T]) Update(live T) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return g.changed
	}
	g.live = clone(live)
	g.changed = Changed(g.live, g.baseline)
	g.store.Set(g.changed)
	return g.changed
}

// Changed reports whether the live snapshot differs from the baseline.
func (g *Guard[T]) Changed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

// Live returns a copy of the live snapshot.
func (g *Guard[T]) Live() T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return clone(g.live)
}

// Baseline returns a copy of the baseline snapshot.
func (g *Guard[T]) Baseline() T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return clone(g.baseline)
}

// Dispose removes the installed listeners and, when the form was dirty,
// clears the shared flag it raised. Calling it again is a no-op.
func (g *Guard[T]) Dispose() {
	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		return
	}
	g.disposed = true
	if g.changed {
		g.changed = false
		g.store.Clear()
	}
	removes := g.removes
	g.removes = nil
	g.mu.Unlock()
	for _, r := range removes {
		r()
	}
}

func (g *Guard[T]) onUnload(e *navigation.UnloadEvent) {
	if !g.store.Unsaved() {
		return
	}
	e.PreventDefault()
	e.ReturnValue = constants.UnsavedMessage
}

func (g *Guard[T]) onLeave(from, to string) bool {
	if !g.store.Unsaved() {
		return true
	}
	if g.confirm != nil && g.confirm(constants.UnsavedMessage) {
		g.store.Clear()
		return true
	}
	logger := common.GetLogger().WithComponent("guard")
	logger.Debug("leave declined", "from", from, "to", to)
	// a back navigation already moved the history pointer
	if g.host.Location() != g.host.Current() {
		if err := g.host.Forward(); err != nil {
			logger.Warn("failed to restore history position", "error", err)
		}
	}
	return false
}
