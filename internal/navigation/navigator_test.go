package navigation

import (
	"errors"
	"testing"
)

func TestNew_DefaultsToRoot(t *testing.T) {
	n := New(Options{})
	if n.Current() != "/" || n.Location() != "/" {
		t.Fatalf("unexpected start: %q %q", n.Current(), n.Location())
	}
	n = New(Options{InitialPath: "admin/studies/"})
	if n.Current() != "/admin/studies" {
		t.Fatalf("path not sanitized: %q", n.Current())
	}
}

func TestNavigate_BackForward(t *testing.T) {
	n := New(Options{InitialPath: "/a"})
	for _, p := range []string{"/b", "/c"} {
		if err := n.Navigate(p); err != nil {
			t.Fatalf("Navigate(%s): %v", p, err)
		}
	}
	if err := n.Back(); err != nil || n.Current() != "/b" {
		t.Fatalf("Back => %v, current %q", err, n.Current())
	}
	if err := n.Forward(); err != nil || n.Current() != "/c" {
		t.Fatalf("Forward => %v, current %q", err, n.Current())
	}
	if err := n.Forward(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("Forward at end: want ErrNoHistory, got %v", err)
	}

	// pushing after going back drops the forward entries
	_ = n.Back()
	if err := n.Navigate("/d"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := n.Forward(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("forward entries should be discarded, got %v", err)
	}
}

func TestNavigate_GuardCancels(t *testing.T) {
	n := New(Options{InitialPath: "/form"})
	var seen []string
	remove := n.OnLeave(func(from, to string) bool {
		seen = append(seen, from+">"+to)
		return to != "/blocked"
	})

	if err := n.Navigate("/blocked"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("want ErrCancelled, got %v", err)
	}
	if n.Current() != "/form" || n.Location() != "/form" {
		t.Fatalf("cancelled push must not move: %q %q", n.Current(), n.Location())
	}
	if err := n.Navigate("/ok"); err != nil {
		t.Fatalf("Navigate(/ok): %v", err)
	}
	if len(seen) != 2 || seen[0] != "/form>/blocked" {
		t.Fatalf("unexpected guard calls: %v", seen)
	}

	remove()
	remove()
	if g, _ := n.Listeners(); g != 0 {
		t.Fatalf("guard not removed: %d", g)
	}
	if err := n.Navigate("/blocked"); err != nil {
		t.Fatalf("removed guard still applied: %v", err)
	}
}

func TestBack_CancelledThenForwardRestoresPointer(t *testing.T) {
	n := New(Options{InitialPath: "/list"})
	_ = n.Navigate("/edit")

	n.OnLeave(func(from, to string) bool {
		_ = n.Forward()
		return false
	})

	if err := n.Back(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("want ErrCancelled, got %v", err)
	}
	if n.Current() != "/edit" || n.Location() != "/edit" {
		t.Fatalf("pointer should be restored: current %q location %q", n.Current(), n.Location())
	}
}

func TestUnload(t *testing.T) {
	n := New(Options{})
	if msg, prevented := n.Unload(); prevented || msg != "" {
		t.Fatalf("no listeners: got %q %v", msg, prevented)
	}
	remove := n.OnUnload(func(e *UnloadEvent) {
		e.PreventDefault()
		e.ReturnValue = "leave?"
	})
	n.OnUnload(func(e *UnloadEvent) {})
	msg, prevented := n.Unload()
	if !prevented || msg != "leave?" {
		t.Fatalf("got %q %v", msg, prevented)
	}
	remove()
	if _, u := n.Listeners(); u != 1 {
		t.Fatalf("want 1 unload listener, got %d", u)
	}
	if _, prevented := n.Unload(); prevented {
		t.Fatalf("removed listener still ran")
	}
}

func TestReplace(t *testing.T) {
	n := New(Options{InitialPath: "/a"})
	_ = n.Navigate("/b")
	if err := n.Replace("/login"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := n.Back(); err != nil || n.Current() != "/a" {
		t.Fatalf("Back after replace => %v %q", err, n.Current())
	}
	if err := n.Forward(); err != nil || n.Current() != "/login" {
		t.Fatalf("Forward => %v %q", err, n.Current())
	}
}
