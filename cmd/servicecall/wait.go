package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/servicecall/internal/endpoint"
	"github.com/loykin/servicecall/internal/httpc"
	"github.com/spf13/cobra"
)

const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultWaitInterval = 2 * time.Second
)

var (
	waitEndpoint string
	waitMethod   string
	waitStatus   int
	waitTimeout  time.Duration
	waitInterval time.Duration
)

// waitParams holds the normalised poll settings.
type waitParams struct {
	url      string
	method   string
	expected int
	timeout  time.Duration
	interval time.Duration
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Poll an API endpoint until it answers with the expected status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := endpoint.NewBuilder(cfg.APIBaseURL, cfg.APIPrefix)
		p := waitParams{
			url:      b.Build(waitEndpoint, "", nil, ""),
			method:   waitMethod,
			expected: waitStatus,
			timeout:  waitTimeout,
			interval: waitInterval,
		}
		if err := doWait(cmd.Context(), httpc.New(cfg.Client), p); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is up\n", p.url)
		return nil
	},
}

func init() {
	waitCmd.Flags().StringVarP(&waitEndpoint, "endpoint", "e", "", "endpoint to poll, relative to the api prefix")
	waitCmd.Flags().StringVar(&waitMethod, "method", http.MethodGet, "poll method: GET or HEAD")
	waitCmd.Flags().IntVar(&waitStatus, "status", http.StatusOK, "expected status code")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", DefaultWaitTimeout, "give up after this long")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", DefaultWaitInterval, "delay between polls")
}

func (p waitParams) normalize() waitParams {
	p.method = strings.ToUpper(strings.TrimSpace(p.method))
	if p.method != http.MethodHead {
		p.method = http.MethodGet
	}
	if p.expected == 0 {
		p.expected = http.StatusOK
	}
	if p.timeout <= 0 {
		p.timeout = DefaultWaitTimeout
	}
	if p.interval <= 0 {
		p.interval = DefaultWaitInterval
	}
	return p
}

func poll(ctx context.Context, client *resty.Client, method, url string) (int, error) {
	req := client.R().SetContext(ctx)
	var (
		resp *resty.Response
		err  error
	)
	if method == http.MethodHead {
		resp, err = req.Head(url)
	} else {
		resp, err = req.Get(url)
	}
	if resp == nil {
		return 0, err
	}
	return resp.StatusCode(), err
}

// doWait polls p.url until it returns the expected status, the timeout
// elapses or ctx is done.
func doWait(ctx context.Context, client *resty.Client, p waitParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p = p.normalize()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	var lastStatus int
	for {
		status, err := poll(ctx, client, p.method, p.url)
		if err == nil && status == p.expected {
			return nil
		}
		lastStatus = status
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait: timeout waiting for %s to return %d (last=%d)", p.url, p.expected, lastStatus)
		case <-ticker.C:
		}
	}
}
