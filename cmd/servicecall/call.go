package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/loykin/servicecall"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/endpoint"
	"github.com/loykin/servicecall/internal/vars"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	callFile      string
	callEndpoint  string
	callMethod    string
	callData      string
	callPathParam string
	callQuery     []string
	callStyle     string
	callOutput    string
	callDownload  bool
	callVars      []string
)

var callCmd = &cobra.Command{
	Use:   "call [route]",
	Short: "Send one request and print the normalised envelope",
	Long: `Send one request through the request layer.

The request is taken from --file (a YAML request document), from a route
name in the configured catalogue, or from --endpoint. Flags override the
values loaded from the file or the route. The endpoint, path parameter and
body strings are rendered as templates, e.g. {{.study_id}}, against the
config vars and --var values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, cfg, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		req, err := buildRequest(cmd, c, cfg.Vars, args)
		if err != nil {
			return err
		}
		env := c.Call(ctx, req)

		if env.IsBinary() && callOutput != "" {
			if err := os.WriteFile(callOutput, env.Binary, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", callOutput, err)
			}
		}
		if err := printEnvelope(cmd.OutOrStdout(), env); err != nil {
			return err
		}
		if !env.Success {
			return fmt.Errorf("request failed with status %d: %s", env.Status, env.Message)
		}
		return nil
	},
}

func init() {
	f := callCmd.Flags()
	f.StringVarP(&callFile, "file", "f", "", "YAML request document")
	f.StringVarP(&callEndpoint, "endpoint", "e", "", "endpoint path relative to the api prefix")
	f.StringVarP(&callMethod, "method", "X", "", "HTTP method (default GET)")
	f.StringVarP(&callData, "data", "d", "", "JSON request body")
	f.StringVar(&callPathParam, "path-param", "", "path parameter appended to the endpoint")
	f.StringArrayVarP(&callQuery, "query", "q", nil, "query parameter as name=value, repeatable; values are parsed as YAML scalars")
	f.StringVar(&callStyle, "style", "", "query style: backslash or questionMark")
	f.StringVarP(&callOutput, "output", "o", "", "write a binary response body to this file")
	f.BoolVar(&callDownload, "download", false, "request a binary response")
	f.StringArrayVar(&callVars, "var", nil, "template variable as name=value, repeatable; overrides config vars")
}

// buildRequest merges --file, the route argument and flags, in that order,
// then renders templated fields.
func buildRequest(cmd *cobra.Command, c *servicecall.Client, global map[string]string, args []string) (servicecall.Request, error) {
	var req servicecall.Request
	if callFile != "" {
		data, err := os.ReadFile(callFile)
		if err != nil {
			return req, fmt.Errorf("read request file: %w", err)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parse request file: %w", err)
		}
	}
	if len(args) == 1 {
		r, err := c.Route(args[0])
		if err != nil {
			return req, err
		}
		req.Endpoint, req.Method = r.Endpoint, r.Method
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		req.Endpoint = callEndpoint
	}
	if flags.Changed("method") {
		req.Method = callMethod
	}
	if flags.Changed("path-param") {
		req.PathParam = callPathParam
	}
	if flags.Changed("style") {
		req.Style = endpoint.Style(callStyle)
	}
	if flags.Changed("data") {
		if !json.Valid([]byte(callData)) {
			return req, fmt.Errorf("--data is not valid JSON")
		}
		req.Body = json.RawMessage(callData)
	}
	if len(callQuery) > 0 {
		q, err := parseQueryFlags(req.Query, callQuery)
		if err != nil {
			return req, err
		}
		req.Query = q
	}
	if callDownload {
		req.ResponseType = servicecall.ResponseBlob
		req.Action = constants.ActionDownload
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		return req, fmt.Errorf("no endpoint: pass a route name, --endpoint or --file")
	}
	return renderRequest(req, global)
}

func renderRequest(req servicecall.Request, global map[string]string) (servicecall.Request, error) {
	v := vars.New(global)
	if err := v.ParsePairs(callVars); err != nil {
		return req, err
	}
	var err error
	if req.Endpoint, err = v.Render(req.Endpoint); err != nil {
		return req, err
	}
	if req.PathParam, err = v.Render(req.PathParam); err != nil {
		return req, err
	}
	// raw --data bodies are sent as given
	if _, raw := req.Body.(json.RawMessage); !raw && req.Body != nil {
		if req.Body, err = v.RenderAny(req.Body); err != nil {
			return req, err
		}
	}
	return req, nil
}

// parseQueryFlags adds name=value pairs to q, creating it when nil.
func parseQueryFlags(q *endpoint.Query, pairs []string) (*endpoint.Query, error) {
	if q == nil {
		q = endpoint.NewQuery()
	}
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --query %q, want name=value", p)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --query value for %s: %w", name, err)
		}
		q.Set(name, endpoint.Of(v))
	}
	return q, nil
}
