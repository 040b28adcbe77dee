package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/loykin/servicecall"
	"github.com/spf13/viper"
)

// loadConfig reads the --config file and applies command-line overrides.
func loadConfig() (*servicecall.Config, error) {
	v := viper.GetViper()
	cfg, err := servicecall.LoadConfig(strings.TrimSpace(v.GetString("config")))
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(v.GetString("base_url")); u != "" {
		cfg.APIBaseURL = u
	}
	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openClient builds a Client from the loaded config. Callers must Close it.
func openClient(ctx context.Context) (*servicecall.Client, *servicecall.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c, err := servicecall.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

// printEnvelope writes env as indented JSON. Binary bodies are summarised.
func printEnvelope(w io.Writer, env *servicecall.Envelope) error {
	out := struct {
		Status           int               `json:"status"`
		Success          bool              `json:"success"`
		Message          string            `json:"message,omitempty"`
		ValidationErrors map[string]string `json:"validationErrors,omitempty"`
		Data             json.RawMessage   `json:"payload,omitempty"`
		BinaryBytes      *int              `json:"binaryBytes,omitempty"`
	}{
		Status:           env.Status,
		Success:          env.Success,
		ValidationErrors: env.ValidationErrors,
		Data:             env.Payload,
	}
	if env.IsBinary() {
		n := len(env.Binary)
		out.BinaryBytes = &n
	} else {
		out.Message = env.Message
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
