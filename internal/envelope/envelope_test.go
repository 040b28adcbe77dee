package envelope

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loykin/servicecall/internal/constants"
)

func TestFromSuccess_CopiesStructuredPayload(t *testing.T) {
	body := []byte(`{"success":true,"message":"ok","data":{"id":7}}`)
	h := http.Header{"X-Trace": []string{"abc"}}
	e := FromSuccess(200, body, h, false)

	body[2] = 'X'
	h.Set("X-Trace", "changed")

	if string(e.Payload) != `{"success":true,"message":"ok","data":{"id":7}}` {
		t.Fatalf("payload aliased the transport buffer: %s", e.Payload)
	}
	if e.Headers.Get("X-Trace") != "abc" {
		t.Fatalf("headers aliased: %v", e.Headers)
	}
	if !e.Success || e.Message != "ok" || e.Status != 200 {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	var data struct {
		ID int `json:"id"`
	}
	if err := e.DecodeData(&data); err != nil || data.ID != 7 {
		t.Fatalf("DecodeData => %+v, %v", data, err)
	}
}

func TestFromSuccess_BinaryIsNotCopied(t *testing.T) {
	body := []byte{0x25, 0x50, 0x44, 0x46}
	e := FromSuccess(200, body, nil, true)
	if !e.IsBinary() || e.Payload != nil {
		t.Fatalf("expected binary envelope, got %+v", e)
	}
	if &e.Binary[0] != &body[0] {
		t.Fatalf("binary payload should be handed over without a copy")
	}
	if err := e.Decode(&struct{}{}); !errors.Is(err, ErrBinary) {
		t.Fatalf("Decode on binary: want ErrBinary, got %v", err)
	}
}

func TestFromSuccess_SuccessFlagFromPayload(t *testing.T) {
	e := FromSuccess(200, []byte(`{"success":false,"message":"rejected"}`), nil, false)
	if e.Success {
		t.Fatalf("payload success=false should win over 2xx")
	}
	e = FromSuccess(204, nil, nil, false)
	if !e.Success || e.Payload != nil {
		t.Fatalf("empty 2xx should be successful with no payload: %+v", e)
	}
}

func TestFromSuccess_NonJSONBodyIsWrapped(t *testing.T) {
	e := FromSuccess(200, []byte("plain text"), nil, false)
	if string(e.Payload) != `"plain text"` {
		t.Fatalf("unexpected payload %s", e.Payload)
	}
}

func TestFromFailure_MessageFallback(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantMessage string
		wantPayload string
	}{
		{"server message kept", `{"message":"Email taken","success":false}`, "Email taken", `{"message":"Email taken","success":false}`},
		{"missing message injected", `{"success":false,"code":9}`, constants.FallbackMessage, `{"code":9,"message":"Oops! Something went wrong","success":false}`},
		{"empty body", ``, constants.FallbackMessage, `{"message":"Oops! Something went wrong"}`},
		{"html body", `<html>bad gateway</html>`, constants.FallbackMessage, `{"message":"Oops! Something went wrong"}`},
		{"array body", `[1,2]`, constants.FallbackMessage, `{"message":"Oops! Something went wrong"}`},
		{"empty message", `{"message":""}`, constants.FallbackMessage, `{"message":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := FromFailure(422, []byte(tc.body), nil)
			if e.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", e.Message, tc.wantMessage)
			}
			if string(e.Payload) != tc.wantPayload {
				t.Fatalf("payload = %s, want %s", e.Payload, tc.wantPayload)
			}
			if e.Success {
				t.Fatalf("failure envelope must not be successful")
			}
			if e.Status != 422 {
				t.Fatalf("status = %d", e.Status)
			}
		})
	}
}

func TestFromFailure_ValidationErrors(t *testing.T) {
	e := FromFailure(400, []byte(`{"message":"invalid","validationErrors":{"email":"required","age":18}}`), nil)
	want := map[string]string{"email": "required", "age": "18"}
	if diff := cmp.Diff(want, e.ValidationErrors); diff != "" {
		t.Fatalf("validation errors mismatch (-want +got):\n%s", diff)
	}
	e = FromFailure(400, []byte(`{"validationErrors":null}`), nil)
	if e.ValidationErrors != nil {
		t.Fatalf("null validationErrors should stay nil, got %v", e.ValidationErrors)
	}
}

func TestFromTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := FromTransportError(cause)
	if e.Status != constants.DefaultFailureStatus || e.Message != constants.FallbackMessage {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	if !errors.Is(e.Err, cause) || e.Success {
		t.Fatalf("unexpected err/success: %+v", e)
	}
	if e.Get("message").String() != constants.FallbackMessage {
		t.Fatalf("payload should carry the fallback message: %s", e.Payload)
	}
}

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodePage(t *testing.T) {
	e := FromSuccess(200, []byte(`{"success":true,"data":{"page":2,"countPerPage":10,"total":11,"items":[{"id":11,"name":"k"}]}}`), nil, false)
	p, err := DecodePage[user](e)
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	want := Page[user]{Page: 2, CountPerPage: 10, Total: 11, Items: []user{{ID: 11, Name: "k"}}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}

	e = FromSuccess(200, []byte(`{"data":{"page":1,"countPerPage":10,"total":0,"items":null}}`), nil, false)
	p, err = DecodePage[user](e)
	if err != nil || p.Items == nil || len(p.Items) != 0 {
		t.Fatalf("empty page => %+v, %v", p, err)
	}

	e = FromSuccess(200, []byte(`{"success":true}`), nil, false)
	if _, err := DecodePage[user](e); err == nil {
		t.Fatalf("expected error without data")
	}
}
