// Package routes loads the named endpoint catalogue, a YAML document of
// groups mapping route names to an endpoint path and method:
//
//	users:
//	  login:  {endpoint: users/login, method: POST}
//	  list:   {endpoint: users, method: GET}
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRoute is returned by Lookup for names not in the catalogue.
var ErrUnknownRoute = errors.New("routes: unknown route")

// Route is one catalogue entry.
type Route struct {
	Endpoint string `yaml:"endpoint"`
	Method   string `yaml:"method"`
}

// Catalogue maps "group.name" to a Route.
type Catalogue struct {
	routes map[string]Route
}

// Parse decodes a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var doc map[string]map[string]Route
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("routes: parse: %w", err)
	}
	c := &Catalogue{routes: map[string]Route{}}
	for group, entries := range doc {
		for name, r := range entries {
			if strings.TrimSpace(r.Endpoint) == "" {
				return nil, fmt.Errorf("routes: %s.%s has no endpoint", group, name)
			}
			r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
			if r.Method == "" {
				r.Method = http.MethodGet
			}
			c.routes[group+"."+name] = r
		}
	}
	return c, nil
}

// Load reads and parses a catalogue file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routes: read %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup returns the route registered under "group.name".
func (c *Catalogue) Lookup(name string) (Route, error) {
	if c != nil {
		if r, ok := c.routes[name]; ok {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
}

// Names returns every route name, sorted.
func (c *Catalogue) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.routes))
	for n := range c.routes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
