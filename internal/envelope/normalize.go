package envelope

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/loykin/servicecall/internal/constants"
	"github.com/tidwall/gjson"
)

// FromSuccess builds the envelope for a settled response. When binary is
// true the body is handed over as is; otherwise it is copied.
func FromSuccess(status int, body []byte, headers http.Header, binary bool) *Envelope {
	e := &Envelope{Status: status, Headers: headers.Clone()}
	if binary {
		e.Binary = body
		if e.Binary == nil {
			e.Binary = []byte{}
		}
		e.Success = is2xx(status)
		return e
	}
	e.Payload = structured(body)
	e.Message = gjson.GetBytes(e.Payload, "message").String()
	e.Success = successFlag(e.Payload, status)
	e.ValidationErrors = validationErrors(e.Payload)
	return e
}

// FromFailure builds the envelope for an error status. The payload always
// carries a message: the server's when the key is present, otherwise the
// fallback.
func FromFailure(status int, body []byte, headers http.Header) *Envelope {
	payload := withMessage(body)
	msg := gjson.GetBytes(payload, "message").String()
	if msg == "" {
		msg = constants.FallbackMessage
	}
	return &Envelope{
		Status:           status,
		Payload:          payload,
		Message:          msg,
		Success:          successFlag(payload, status),
		ValidationErrors: validationErrors(payload),
		Headers:          headers.Clone(),
	}
}

// FromTransportError builds the envelope for a call that produced no
// response at all.
func FromTransportError(err error) *Envelope {
	return &Envelope{
		Err:     err,
		Status:  constants.DefaultFailureStatus,
		Payload: fallbackPayload(),
		Message: constants.FallbackMessage,
		Headers: http.Header{},
	}
}

func is2xx(status int) bool { return status >= 200 && status < 300 }

func successFlag(payload []byte, status int) bool {
	if res := gjson.GetBytes(payload, "success"); res.Exists() && (res.Type == gjson.True || res.Type == gjson.False) {
		return res.Bool()
	}
	return is2xx(status)
}

func validationErrors(payload []byte) map[string]string {
	res := gjson.GetBytes(payload, "validationErrors")
	if !res.IsObject() {
		return nil
	}
	out := map[string]string{}
	res.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.String()
		return true
	})
	return out
}

// structured returns an independent copy of body as JSON. Non-JSON text is
// wrapped as a JSON string; an empty body yields nil.
func structured(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if gjson.ValidBytes(trimmed) {
		return json.RawMessage(bytes.Clone(trimmed))
	}
	b, _ := json.Marshal(string(body))
	return b
}

func fallbackPayload() json.RawMessage {
	b, _ := json.Marshal(map[string]string{"message": constants.FallbackMessage})
	return b
}

func withMessage(body []byte) json.RawMessage {
	payload := structured(body)
	if !gjson.ParseBytes(payload).IsObject() {
		return fallbackPayload()
	}
	if gjson.GetBytes(payload, "message").Exists() {
		return payload
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return fallbackPayload()
	}
	msg, _ := json.Marshal(constants.FallbackMessage)
	m["message"] = msg
	out, err := json.Marshal(m)
	if err != nil {
		return fallbackPayload()
	}
	return out
}
