// Package envelope normalizes the two response shapes returned by upstream
// integrations: a direct JSON payload, or a proxy wrapper
// {"statusCode": ..., "body": "<json string>"} whose body must be decoded a
// second time. All boundary code goes through Normalize so the shape is
// detected exactly once.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Result is a response payload with the proxy wrapper (if any) peeled off.
type Result struct {
	// StatusCode is the effective status: the inner statusCode for a
	// proxy-wrapped response, the transport status otherwise.
	StatusCode int
	// Fields is the decoded payload object.
	Fields map[string]json.RawMessage
	// Proxied is true when the payload arrived in the proxy wrapper.
	Proxied bool
}

// ParseError reports a payload that could not be decoded as JSON. It carries
// the offending payload for diagnosis.
type ParseError struct {
	Payload string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable response payload: %s", e.Payload)
}

type proxyProbe struct {
	StatusCode *int            `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// Normalize decodes a response payload, unwrapping the proxy envelope when
// present. transportStatus is the HTTP status of the outer response.
//
// A proxy body that is itself not valid JSON is folded into
// {"error": <raw body>} rather than failing, matching the lenient handling
// the proxy integrations require. A direct payload that is not a JSON object
// is a *ParseError.
func Normalize(transportStatus int, payload []byte) (*Result, error) {
	var probe proxyProbe
	if err := json.Unmarshal(payload, &probe); err == nil && probe.StatusCode != nil && probe.Body != nil {
		return unwrapProxy(&probe)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, &ParseError{Payload: string(payload)}
	}
	return &Result{StatusCode: transportStatus, Fields: fields}, nil
}

func unwrapProxy(probe *proxyProbe) (*Result, error) {
	// The proxy body is a JSON string containing JSON.
	var inner string
	if err := json.Unmarshal(probe.Body, &inner); err != nil {
		// Some integrations return the body as an object directly.
		inner = string(probe.Body)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(inner), &fields); err != nil {
		raw, _ := json.Marshal(inner)
		fields = map[string]json.RawMessage{"error": raw}
	}
	return &Result{StatusCode: *probe.StatusCode, Fields: fields, Proxied: true}, nil
}

// Str returns the named field as a string, or "" when absent or not a
// string.
func (r *Result) Str(key string) string {
	raw, ok := r.Fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ErrorMessage returns the payload's error or message field, in that
// priority, or "" when neither is present.
func (r *Result) ErrorMessage() string {
	if msg := r.Str("error"); msg != "" {
		return msg
	}
	return r.Str("message")
}

// Decode unmarshals the named field into v. Returns false when the field is
// absent or does not match v's shape.
func (r *Result) Decode(key string, v any) bool {
	raw, ok := r.Fields[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
