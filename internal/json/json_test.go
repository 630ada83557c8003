package json

import (
	"bytes"
	"strings"
	"testing"
)

func TestValid(t *testing.T) {
	if !Valid([]byte(`{"a":1}`)) {
		t.Error("expected valid")
	}
	if Valid([]byte(`{"a":`)) {
		t.Error("expected invalid")
	}
}

func TestRawMessagePassthrough(t *testing.T) {
	type record struct {
		Value RawMessage `json:"value"`
	}
	var r record
	if err := Unmarshal([]byte(`{"value":{"nested":[1,2]}}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	out, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"value":{"nested":[1,2]}}` {
		t.Errorf("raw message altered: %s", out)
	}
}

func TestDecoderUseNumber(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"n":12345678901234567890}`))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := m["n"].(Number); !ok {
		t.Errorf("expected Number, got %T", m["n"])
	}
}

func TestEncoderIndent(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\n") {
		t.Errorf("expected indented output, got %q", buf.String())
	}
}
