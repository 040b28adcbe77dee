// Package httpc builds the resty client used for every backend call.
package httpc

import (
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the client. The zero value gives resty defaults with
// no request timeout.
type Options struct {
	Insecure bool          `mapstructure:"insecure" yaml:"insecure"`
	MinTLS   string        `mapstructure:"min_tls" yaml:"min_tls"`
	MaxTLS   string        `mapstructure:"max_tls" yaml:"max_tls"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Tracing  bool          `mapstructure:"tracing" yaml:"tracing"`
}

// New returns a resty.Client configured from opt.
func New(opt Options) *resty.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg := opt.tlsConfig(); cfg != nil {
		tr.TLSClientConfig = cfg
	}

	var rt http.RoundTripper = tr
	if opt.Tracing {
		rt = otelhttp.NewTransport(tr)
	}

	c := resty.New().SetTransport(rt)
	if opt.Timeout > 0 {
		c.SetTimeout(opt.Timeout)
	}
	return c
}

func (o Options) tlsConfig() *tls.Config {
	minV := parseTLSVersion(o.MinTLS)
	maxV := parseTLSVersion(o.MaxTLS)
	if !o.Insecure && minV == 0 && maxV == 0 {
		return nil
	}
	// #nosec G402 -- opt-in for self-signed development backends
	return &tls.Config{InsecureSkipVerify: o.Insecure, MinVersion: minV, MaxVersion: maxV}
}

// parseTLSVersion accepts forms like "1.2", "tls1.3" or "TLS12"; anything
// else yields 0.
func parseTLSVersion(s string) uint16 {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "tls")
	v = strings.TrimPrefix(v, "v")
	switch v {
	case "1.0", "10":
		return tls.VersionTLS10
	case "1.1", "11":
		return tls.VersionTLS11
	case "1.2", "12":
		return tls.VersionTLS12
	case "1.3", "13":
		return tls.VersionTLS13
	default:
		return 0
	}
}
