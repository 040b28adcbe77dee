// Package envelope holds the single result shape returned for every
// dispatched request, success or failure.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrBinary is returned when decoding an envelope that carries a binary payload.
var ErrBinary = errors.New("envelope: payload is binary")

// Envelope is constructed fresh on every call and not mutated after return.
type Envelope struct {
	Status int `json:"status"`

	// Payload is an independent copy of the structured body.
	Payload json.RawMessage `json:"data,omitempty"`

	// Binary is set instead of Payload when a blob response was requested.
	Binary []byte `json:"-"`

	Message          string            `json:"message"`
	Success          bool              `json:"success"`
	ValidationErrors map[string]string `json:"validationErrors"`
	Headers          http.Header       `json:"-"`

	// Err is the transport error when no response was produced.
	Err error `json:"-"`
}

// IsBinary reports whether the envelope carries a blob.
func (e *Envelope) IsBinary() bool { return e.Binary != nil }

// Decode unmarshals the whole structured payload into v.
func (e *Envelope) Decode(v any) error {
	if e.IsBinary() {
		return ErrBinary
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("envelope: empty payload")
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("envelope: decode payload: %w", err)
	}
	return nil
}

// DecodeData unmarshals the payload's "data" member into v.
func (e *Envelope) DecodeData(v any) error {
	if e.IsBinary() {
		return ErrBinary
	}
	res := gjson.GetBytes(e.Payload, "data")
	if !res.Exists() {
		return fmt.Errorf("envelope: payload has no data field")
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		return fmt.Errorf("envelope: decode data: %w", err)
	}
	return nil
}

// Get evaluates a gjson path against the structured payload.
func (e *Envelope) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Payload, path)
}
