// Package vars renders request documents against layered variables.
package vars

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type Map map[string]string

// Vars holds two layers:
//   - Global: variables from the config file
//   - Local: variables passed for a single request
//
// Lookup and rendering give precedence to Local over Global.
type Vars struct {
	Global Map
	Local  Map
}

func New(global Map) *Vars {
	return &Vars{Global: global, Local: Map{}}
}

// ParsePairs decodes name=value pairs into Local.
func (v *Vars) ParsePairs(pairs []string) error {
	if v.Local == nil {
		v.Local = Map{}
	}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("vars: invalid pair %q, want name=value", p)
		}
		v.Local[name] = value
	}
	return nil
}

func (v *Vars) merged() map[string]string {
	m := map[string]string{}
	if v == nil {
		return m
	}
	for k, val := range v.Global {
		m[k] = val
	}
	for k, val := range v.Local {
		m[k] = val
	}
	return m
}

// Lookup searches Local first, then Global.
func (v *Vars) Lookup(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	if val, ok := v.Local[key]; ok {
		return val, true
	}
	val, ok := v.Global[key]
	return val, ok
}

// Render executes s as a template. Variables are reachable flat ({{.id}})
// and grouped ({{.vars.id}}). A missing variable is an error.
func (v *Vars) Render(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	t, err := template.New("request").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", fmt.Errorf("vars: parse %q: %w", s, err)
	}
	merged := v.merged()
	data := make(map[string]any, len(merged)+1)
	for k, val := range merged {
		data[k] = val
	}
	data["vars"] = merged
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("vars: render %q: %w", s, err)
	}
	return buf.String(), nil
}

// RenderAny walks maps and slices decoded from YAML or JSON and renders
// every string. Other scalars are returned unchanged.
func (v *Vars) RenderAny(in any) (any, error) {
	switch t := in.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			r, err := v.RenderAny(vv)
			if err != nil {
				return nil, err
			}
			m[k] = r
		}
		return m, nil
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			r, err := v.RenderAny(t[i])
			if err != nil {
				return nil, err
			}
			arr[i] = r
		}
		return arr, nil
	case string:
		return v.Render(t)
	default:
		return in, nil
	}
}
