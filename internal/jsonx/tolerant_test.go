package jsonx

import (
	"testing"
)

type payload struct {
	Solution   string  `json:"solution"`
	Confidence float64 `json:"confidence_score"`
}

func TestUnmarshalStrictJSONRoundTrips(t *testing.T) {
	var p payload
	raw := `{"solution": "restart the service", "confidence_score": 0.8}`
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("strict JSON should parse: %v", err)
	}
	if p.Solution != "restart the service" || p.Confidence != 0.8 {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestUnmarshalRawNewlineInsideString(t *testing.T) {
	raw := "{\"solution\": \"step one\nstep two\", \"confidence_score\": 0.5}"
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("raw newline should be tolerated: %v", err)
	}
	if p.Solution != "step one\nstep two" {
		t.Errorf("newline should survive as logical newline, got %q", p.Solution)
	}

	// The same document with a properly escaped newline parses to the same value.
	escaped := `{"solution": "step one\nstep two", "confidence_score": 0.5}`
	var q payload
	if err := Unmarshal([]byte(escaped), &q); err != nil {
		t.Fatalf("escaped form should parse: %v", err)
	}
	if p.Solution != q.Solution {
		t.Errorf("raw and escaped forms should agree: %q vs %q", p.Solution, q.Solution)
	}
}

func TestUnmarshalTabAndCarriageReturn(t *testing.T) {
	raw := "{\"solution\": \"a\tb\rc\"}"
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("control bytes should be tolerated: %v", err)
	}
	if p.Solution != "a\tb\rc" {
		t.Errorf("got %q", p.Solution)
	}
}

func TestUnmarshalOtherControlBytesBecomeSpaces(t *testing.T) {
	raw := "{\"solution\": \"a\x01b\"}"
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("control byte should be tolerated: %v", err)
	}
	if p.Solution != "a b" {
		t.Errorf("got %q, want control byte replaced by a space", p.Solution)
	}
}

func TestUnmarshalEscapesPassThroughVerbatim(t *testing.T) {
	raw := `{"solution": "quote \" and backslash \\ kept"}`
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("escape sequences should pass through: %v", err)
	}
	if p.Solution != `quote " and backslash \ kept` {
		t.Errorf("got %q", p.Solution)
	}
}

func TestUnmarshalUnrecoverableFailure(t *testing.T) {
	var p payload
	if err := Unmarshal([]byte("not json at all"), &p); err == nil {
		t.Error("garbage input should fail even after sanitizing")
	}
}

func TestFirstObject(t *testing.T) {
	got, ok := FirstObject("Sure! Here is the answer:\n{\"a\": 1}\nHope that helps.")
	if !ok || got != `{"a": 1}` {
		t.Errorf("got %q ok=%v", got, ok)
	}
	if _, ok := FirstObject("no braces here"); ok {
		t.Error("expected no object")
	}
	// Nested objects: region spans first '{' to last '}'.
	got, ok = FirstObject(`x {"a": {"b": 2}} y`)
	if !ok || got != `{"a": {"b": 2}}` {
		t.Errorf("got %q ok=%v", got, ok)
	}
}
