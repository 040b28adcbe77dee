// Package endpoint composes backend URLs from a base, an endpoint path, an
// optional path parameter and a query rendered in one of two styles.
package endpoint

import (
	"net/url"
	"strings"
)

// Builder holds the fixed parts of every URL.
type Builder struct {
	BaseURL string
	Prefix  string // API prefix, e.g. "api"
}

// NewBuilder trims trailing slashes from base and surrounding slashes from prefix.
func NewBuilder(baseURL, prefix string) Builder {
	return Builder{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Prefix:  strings.Trim(strings.TrimSpace(prefix), "/"),
	}
}

// Build returns base/prefix/endpoint[/pathParam][query] with every value
// rendered raw.
func (b Builder) Build(endpoint, pathParam string, query *Query, style Style) string {
	return b.build(endpoint, pathParam, query, style, false)
}

// BuildEscaped is Build for the wire: the path parameter and each query
// name and value are escaped for the position they occupy.
func (b Builder) BuildEscaped(endpoint, pathParam string, query *Query, style Style) string {
	return b.build(endpoint, pathParam, query, style, true)
}

func (b Builder) build(endpoint, pathParam string, query *Query, style Style, escape bool) string {
	var sb strings.Builder
	sb.WriteString(b.BaseURL)
	if b.Prefix != "" {
		sb.WriteByte('/')
		sb.WriteString(b.Prefix)
	}
	sb.WriteByte('/')
	sb.WriteString(strings.TrimLeft(endpoint, "/"))

	if pathParam != "" {
		sb.WriteByte('/')
		if escape {
			pathParam = url.PathEscape(pathParam)
		}
		sb.WriteString(pathParam)
	}

	sb.WriteString(renderQuery(query, style, escape))
	return sb.String()
}

// RenderQuery renders the non-null entries of q including the leading
// separator, or "" when nothing remains.
func RenderQuery(q *Query, style Style) string {
	return renderQuery(q, style, false)
}

func renderQuery(q *Query, style Style, escape bool) string {
	present := q.Present()
	if len(present) == 0 {
		return ""
	}
	parts := make([]string, 0, len(present))
	if style == QuestionMark {
		esc := func(s string) string { return s }
		if escape {
			esc = url.QueryEscape
		}
		for _, p := range present {
			parts = append(parts, esc(p.Name)+"="+esc(p.Value.Raw()))
		}
		return "?" + strings.Join(parts, "&")
	}
	esc := func(s string) string { return s }
	if escape {
		esc = url.PathEscape
	}
	for _, p := range present {
		v := p.Value.Raw()
		if p.Name == KeyFilter || p.Name == KeyOrderBy {
			v = p.Value.JSONText()
		}
		parts = append(parts, esc(p.Name)+"="+esc(v))
	}
	return "/" + strings.Join(parts, "/")
}
