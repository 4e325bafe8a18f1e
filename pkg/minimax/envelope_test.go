package minimax

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		present bool
		code    int
		msg     string
		ok      bool
	}{
		{"base_resp success", `{"base_resp":{"status_code":0,"status_msg":"success"}}`, true, 0, "success", true},
		{"base_resp failure", `{"base_resp":{"status_code":1004,"status_msg":"auth"}}`, true, 1004, "auth", false},
		{"top level", `{"status_code":2013,"status_msg":"bad"}`, true, 2013, "bad", false},
		{"base_resp wins", `{"status_code":1,"base_resp":{"status_code":0}}`, true, 0, "", true},
		{"no envelope", `{"data":{"audio":"00"}}`, false, 0, "", true},
		{"null code", `{"base_resp":{"status_code":null}}`, false, 0, "", true},
		{"float code", `{"base_resp":{"status_code":1004.0,"status_msg":"auth"}}`, true, 1004, "auth", false},
		{"float zero", `{"base_resp":{"status_code":0.0,"status_msg":"success"}}`, true, 0, "success", true},
		{"exponent code", `{"status_code":2.013e3,"status_msg":"bad"}`, true, 2013, "bad", false},
		{"missing message", `{"base_resp":{"status_code":1002}}`, true, 1002, "Unknown error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if env.Present != tt.present || env.StatusCode != tt.code || env.StatusMsg != tt.msg {
				t.Fatalf("got %+v, want present=%v code=%d msg=%q", env, tt.present, tt.code, tt.msg)
			}
			if env.OK() != tt.ok {
				t.Fatalf("OK() = %v, want %v", env.OK(), tt.ok)
			}
			if (env.Err() == nil) != tt.ok {
				t.Fatalf("Err() = %v, want ok=%v", env.Err(), tt.ok)
			}
		})
	}
}

func TestParseEnvelopeMalformedStatus(t *testing.T) {
	for _, body := range []string{
		`{"base_resp":{"status_code":"abc","status_msg":"auth"}}`,
		`{"base_resp":{"status_code":"0"}}`,
		`{"status_code":"oops"}`,
		`{"status_code":1004.5}`,
		`{"status_code":true}`,
		`{"base_resp":{"status_code":{"code":1}}}`,
	} {
		_, err := ParseEnvelope([]byte(body))
		if !errors.Is(err, ErrMalformedStatus) {
			t.Errorf("ParseEnvelope(%s) err = %v, want ErrMalformedStatus", body, err)
		}
	}
}

func TestRequestMalformedStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task_id":"t1","base_resp":{"status_code":"abc","status_msg":"auth"}}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	_, err := c.Video.Query(context.Background(), "t1")
	if KindOf(err) != KindTransport || !errors.Is(err, ErrMalformedStatus) {
		t.Fatalf("err = %v, want transport error wrapping ErrMalformedStatus", err)
	}
}

func TestParseEnvelopeNotJSON(t *testing.T) {
	for _, body := range []string{"", "<html>", "[1,2]"} {
		if _, err := ParseEnvelope([]byte(body)); err == nil {
			t.Errorf("ParseEnvelope(%q) should fail", body)
		}
	}
}

func TestParseEnvelopeTraceID(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"trace_id":"abc","base_resp":{"status_code":1008,"status_msg":"x"}}`))
	if err != nil {
		t.Fatal(err)
	}
	e, ok := AsError(env.Err())
	if !ok {
		t.Fatalf("expected *Error, got %v", env.Err())
	}
	if e.TraceID != "abc" || !e.IsInsufficientBalance() {
		t.Fatalf("unexpected error %+v", e)
	}
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		code int
		msg  string
		want string
	}{
		{1002, "rpm", "Rate limit exceeded, please try again later"},
		{1004, "x", "Authentication failed, please check your API key"},
		{1008, "x", "Insufficient account balance"},
		{1026, "x", "Video description contains sensitive content, please adjust"},
		{2013, "invalid params", "Invalid parameters, please check your input"},
		{2049, "x", "Invalid API key, please check your API key"},
		{9999, "boom", "API Error 9999: boom"},
	}
	for _, tt := range tests {
		if got := MessageFor(tt.code, tt.msg); got != tt.want {
			t.Errorf("MessageFor(%d, %q) = %q, want %q", tt.code, tt.msg, got, tt.want)
		}
	}

	got := MessageFor(2013, "invalid params, group_id can not access video 02")
	if !strings.Contains(got, "MiniMax-Hailuo-02") {
		t.Errorf("hailuo access message not used: %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{&Error{StatusCode: 1002}, KindAPI},
		{&TransportError{Method: "GET", Endpoint: "/x", HTTPStatus: 502}, KindTransport},
		{invalid("text", "is required"), KindValidation},
		{&DecodeError{Encoding: "hex"}, KindDecode},
		{&TaskFailedError{TaskID: "t", Status: TaskStatusFail}, KindTaskFailed},
		{&TimeoutError{TaskID: "t"}, KindTimeout},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
