package dispatch

import (
	"net/http"
	"strings"

	"github.com/loykin/servicecall/internal/endpoint"
)

// ResponseType selects how the response body is represented.
type ResponseType string

const (
	ResponseJSON ResponseType = "json"
	ResponseBlob ResponseType = "blob"
)

// Request describes one call. It is created per call and not modified by
// the dispatcher.
type Request struct {
	Endpoint  string          `yaml:"endpoint"`
	Method    string          `yaml:"method"`
	Body      any             `yaml:"body"`
	PathParam string          `yaml:"path_param"`
	Query     *endpoint.Query `yaml:"query"`
	Style     endpoint.Style  `yaml:"style"`
	// Action is the intent tag, e.g. "download".
	Action        string       `yaml:"action"`
	DisableLoader bool         `yaml:"disable_loader"`
	ResponseType  ResponseType `yaml:"response_type"`
}

func (r Request) method() string {
	m := strings.ToUpper(strings.TrimSpace(r.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

func (r Request) binary() bool {
	return strings.EqualFold(string(r.ResponseType), string(ResponseBlob))
}
