package envelope

import (
	"errors"
	"testing"
)

func TestNormalizeDirect(t *testing.T) {
	res, err := Normalize(200, []byte(`{"content":"hello","analytics":{"session_id":"s1"}}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.Proxied {
		t.Error("direct payload reported as proxied")
	}
	if res.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", res.StatusCode)
	}
	if got := res.Str("content"); got != "hello" {
		t.Errorf("expected content hello, got %q", got)
	}
}

func TestNormalizeProxy(t *testing.T) {
	payload := []byte(`{"statusCode": 200, "body": "{\"response\":\"hi there\"}"}`)
	res, err := Normalize(200, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !res.Proxied {
		t.Error("proxy payload not detected")
	}
	if got := res.Str("response"); got != "hi there" {
		t.Errorf("expected inner response, got %q", got)
	}
}

func TestNormalizeProxyInnerStatusWins(t *testing.T) {
	payload := []byte(`{"statusCode": 403, "body": "{\"error\":\"denied\"}"}`)
	res, err := Normalize(200, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.StatusCode != 403 {
		t.Errorf("expected inner status 403, got %d", res.StatusCode)
	}
	if got := res.ErrorMessage(); got != "denied" {
		t.Errorf("expected error message denied, got %q", got)
	}
}

func TestNormalizeProxyUnparsableBody(t *testing.T) {
	payload := []byte(`{"statusCode": 500, "body": "Internal Server Error"}`)
	res, err := Normalize(200, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := res.ErrorMessage(); got != "Internal Server Error" {
		t.Errorf("unparsable proxy body should become the error message, got %q", got)
	}
}

func TestNormalizeNonJSON(t *testing.T) {
	_, err := Normalize(200, []byte(`<html>gateway timeout</html>`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Payload != "<html>gateway timeout</html>" {
		t.Errorf("ParseError should carry the offending payload, got %q", perr.Payload)
	}
}

func TestErrorMessagePriority(t *testing.T) {
	res, err := Normalize(200, []byte(`{"error":"boom","message":"secondary"}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := res.ErrorMessage(); got != "boom" {
		t.Errorf("error field should win over message, got %q", got)
	}
}

func TestDecodeMissingField(t *testing.T) {
	res, err := Normalize(200, []byte(`{"content":"x"}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	var v map[string]any
	if res.Decode("analytics", &v) {
		t.Error("Decode should report false for a missing field")
	}
}
