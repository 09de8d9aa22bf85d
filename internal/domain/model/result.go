package model

import "encoding/json"

// Result is the outcome of an endpoint operation: either the upstream payload,
// passed through unmodified, or a Problem describing missing business data.
type Result struct {
	Payload json.RawMessage
	Problem *Problem
}

// PayloadResult wraps a raw upstream payload.
func PayloadResult(raw []byte) Result {
	return Result{Payload: json.RawMessage(raw)}
}

// ProblemResult wraps a Problem.
func ProblemResult(code, message string) Result {
	return Result{Problem: &Problem{Code: code, Message: message}}
}

// JSON returns the bytes handed back to callers.
func (r Result) JSON() []byte {
	if r.Problem != nil {
		data, err := json.Marshal(r.Problem)
		if err != nil {
			return []byte(`{"error":"internal","message":"could not encode problem"}`)
		}
		return data
	}
	if len(r.Payload) == 0 {
		return []byte("null")
	}
	return r.Payload
}

// SessionStatus is a read-only view of the session for status reporting.
// It never exposes the token itself.
type SessionStatus struct {
	HasToken         bool             `json:"has_token" yaml:"has_token"`
	TokenSource      CredentialSource `json:"token_source,omitempty" yaml:"token_source,omitempty"`
	TokenFingerprint string           `json:"token_fingerprint,omitempty" yaml:"token_fingerprint,omitempty"`
	HasAreaHash      bool             `json:"has_area_hash" yaml:"has_area_hash"`
	LoginInFlight    bool             `json:"login_in_flight" yaml:"login_in_flight"`
}
