package codec

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()
	in := map[string]any{"a": 1, "b": "x"}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["a"].(float64) != 1 || out["b"].(string) != "x" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestCBORCodec(t *testing.T) {
	c := CBOR()
	in := map[string]any{"n": 42}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(out["n"].(uint64)) != 42 && int(out["n"].(float64)) != 42 { // decoder may choose num type
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestCBORDeterministic(t *testing.T) {
	c := CBOR()
	in := map[string]any{"b": 2, "a": 1, "c": 3}
	b1, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b2, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatalf("canonical encoding not deterministic")
	}
}

func TestProtoCodec(t *testing.T) {
	c := Proto()
	s, err := structpb.NewStruct(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := c.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out structpb.Struct
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Fields["k"].GetStringValue() != "v" {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestProtoCodecRejectsNonMessage(t *testing.T) {
	c := Proto()
	if _, err := c.Marshal(42); err == nil {
		t.Fatalf("expected error for non-proto value")
	}
	if err := c.Unmarshal(nil, 42); err == nil {
		t.Fatalf("expected error for non-proto target")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, ct := range []string{ContentCBOR, ContentJSON, ContentProto} {
		if r.Get(ct) == nil {
			t.Fatalf("missing built-in codec %q", ct)
		}
	}
	if r.Get("application/x-unknown") != nil {
		t.Fatalf("unexpected codec for unknown content type")
	}
}
