package routes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const doc = `
users:
  login:
    endpoint: users/login
    method: post
  list:
    endpoint: users
studies:
  detail:
    endpoint: studies
    method: GET
`

func TestParseAndLookup(t *testing.T) {
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := c.Lookup("users.login")
	if err != nil || r.Endpoint != "users/login" || r.Method != "POST" {
		t.Fatalf("users.login => %+v, %v", r, err)
	}
	r, _ = c.Lookup("users.list")
	if r.Method != "GET" {
		t.Fatalf("method should default to GET, got %q", r.Method)
	}
	if _, err := c.Lookup("users.nope"); !errors.Is(err, ErrUnknownRoute) {
		t.Fatalf("want ErrUnknownRoute, got %v", err)
	}
	names := c.Names()
	if len(names) != 3 || names[0] != "studies.detail" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestParse_MissingEndpoint(t *testing.T) {
	if _, err := Parse([]byte("users:\n  x:\n    method: GET\n")); err == nil {
		t.Fatalf("expected error for route without endpoint")
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := c.Lookup("studies.detail"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
