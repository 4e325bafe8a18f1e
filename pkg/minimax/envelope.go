package minimax

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedStatus is returned by ParseEnvelope when a status_code is
// present but is not an integral JSON number.
var ErrMalformedStatus = errors.New("malformed status_code")

// Envelope is the status carried by a response body.
//
// Present is false when the body had neither a base_resp block nor
// top-level status fields; such a body is treated as success by callers
// that accept envelope-less providers.
type Envelope struct {
	Present    bool
	StatusCode int
	StatusMsg  string
	TraceID    string
}

// OK reports whether the envelope signals success.
func (e Envelope) OK() bool {
	return !e.Present || e.StatusCode == 0
}

// Err returns nil on success, or an *Error carrying the code and message.
func (e Envelope) Err() error {
	if e.OK() {
		return nil
	}
	return &Error{
		StatusCode: e.StatusCode,
		StatusMsg:  e.StatusMsg,
		TraceID:    e.TraceID,
	}
}

// rawEnvelope keeps status fields as raw JSON so a present 0 can be told
// apart from a missing field.
type rawEnvelope struct {
	BaseResp *struct {
		StatusCode json.RawMessage `json:"status_code"`
		StatusMsg  string          `json:"status_msg"`
	} `json:"base_resp"`
	StatusCode json.RawMessage `json:"status_code"`
	StatusMsg  string          `json:"status_msg"`
	TraceID    string          `json:"trace_id"`
}

// ParseEnvelope extracts base_resp.status_code/status_msg from a JSON
// object, falling back to top-level status_code/status_msg.
//
// The returned error is non-nil if body is not a JSON object or carries a
// status_code that is not an integral number. Use Envelope.Err to turn a
// business failure into an error.
func ParseEnvelope(body []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, err
	}

	env := Envelope{TraceID: raw.TraceID}
	switch {
	case raw.BaseResp != nil && len(raw.BaseResp.StatusCode) > 0:
		code, present, err := parseCode(raw.BaseResp.StatusCode)
		if err != nil || !present {
			return Envelope{}, err
		}
		env.Present = true
		env.StatusCode = code
		env.StatusMsg = raw.BaseResp.StatusMsg
	case len(raw.StatusCode) > 0:
		code, present, err := parseCode(raw.StatusCode)
		if err != nil || !present {
			return Envelope{}, err
		}
		env.Present = true
		env.StatusCode = code
		env.StatusMsg = raw.StatusMsg
	}
	if env.Present && env.StatusMsg == "" && env.StatusCode != 0 {
		env.StatusMsg = "Unknown error"
	}
	return env, nil
}

// parseCode reads a status code. null counts as absent; integral floats
// such as 1004.0 are accepted.
func parseCode(raw json.RawMessage) (code int, present bool, err error) {
	if string(raw) == "null" {
		return 0, false, nil
	}
	// json.Number also accepts quoted numbers; only bare numbers count.
	if raw[0] == '"' {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformedStatus, raw)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformedStatus, raw)
	}
	if v, err := n.Int64(); err == nil {
		return int(v), true, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformedStatus, raw)
	}
	return int(f), true, nil
}
