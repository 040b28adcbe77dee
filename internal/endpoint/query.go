package endpoint

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Style selects how a Query is appended to the URL.
type Style string

const (
	// PathSegment renders /name=value/name2=value2.
	PathSegment Style = "backslash"
	// QuestionMark renders ?name=value&name2=value2.
	QuestionMark Style = "questionMark"
)

// Keys rendered as JSON text in path-segment style.
const (
	KeyFilter  = "filter"
	KeyOrderBy = "orderBy"
)

// Param is one named query entry.
type Param struct {
	Name  string
	Value Value
}

// Query is an ordered parameter set. Setting an existing name replaces its
// value in place.
type Query struct {
	params []Param
}

// NewQuery builds a Query from name/value pairs, in order.
func NewQuery(params ...Param) *Query {
	q := &Query{}
	for _, p := range params {
		q.Set(p.Name, p.Value)
	}
	return q
}

// Params builds a Query from a map. Keys are sorted so output is deterministic.
func Params(m map[string]any) *Query {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := &Query{}
	for _, k := range keys {
		q.Set(k, Of(m[k]))
	}
	return q
}

// Set adds or replaces name.
func (q *Query) Set(name string, v Value) *Query {
	for i := range q.params {
		if q.params[i].Name == name {
			q.params[i].Value = v
			return q
		}
	}
	q.params = append(q.params, Param{Name: name, Value: v})
	return q
}

// Get returns the value for name, Null when absent.
func (q *Query) Get(name string) Value {
	if q == nil {
		return Null()
	}
	for _, p := range q.params {
		if p.Name == name {
			return p.Value
		}
	}
	return Null()
}

// Len counts all entries including nulls.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.params)
}

// Present returns the non-null entries in insertion order.
func (q *Query) Present() []Param {
	if q == nil {
		return nil
	}
	out := make([]Param, 0, len(q.params))
	for _, p := range q.params {
		if !p.Value.IsNull() {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalYAML decodes a mapping, preserving document order.
func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	q.params = nil
	if node.Kind != yaml.MappingNode {
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		*q = *Params(m)
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		q.Set(node.Content[i].Value, Of(v))
	}
	return nil
}

// Pagination is the list-query shape shared by the paged endpoints.
type Pagination struct {
	Page         int
	CountPerPage int
	Filter       any
	OrderBy      any
}

// Query renders the pagination fields; zero pages and nil filters are omitted.
func (p Pagination) Query() *Query {
	q := &Query{}
	if p.Page > 0 {
		q.Set("page", Int(int64(p.Page)))
	}
	if p.CountPerPage > 0 {
		q.Set("countPerPage", Int(int64(p.CountPerPage)))
	}
	q.Set(KeyFilter, JSON(p.Filter))
	q.Set(KeyOrderBy, JSON(p.OrderBy))
	return q
}
