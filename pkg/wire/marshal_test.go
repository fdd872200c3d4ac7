package wire

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRequestRoundtrip(t *testing.T) {
	in := Request{
		ID:     "t1",
		Type:   "Echo",
		Params: []byte("hi"),
		Meta:   map[string]string{"origin": "unit"},
	}
	b, err := EncodeRequest(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeRequest(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != in.ID || out.Type != in.Type || string(out.Params) != "hi" || out.Meta["origin"] != "unit" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestResponseRoundtrip(t *testing.T) {
	for _, st := range []Status{StatusSuccess, StatusFailure, StatusRetry} {
		in := Response{Status: st, Output: []byte("out"), Error: "e"}
		b, err := EncodeResponse(in)
		if err != nil {
			t.Fatalf("encode(%v): %v", st, err)
		}
		out, err := DecodeResponse(b)
		if err != nil {
			t.Fatalf("decode(%v): %v", st, err)
		}
		if out.Status != st || string(out.Output) != "out" || out.Error != "e" {
			t.Fatalf("roundtrip mismatch: %#v", out)
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := DecodeResponse([]byte{0xff}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRequestRoundtripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := Request{
			ID:     rapid.String().Draw(t, "id"),
			Type:   rapid.String().Draw(t, "type"),
			Params: rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(t, "params"),
		}
		b, err := EncodeRequest(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := DecodeRequest(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.ID != in.ID || out.Type != in.Type || string(out.Params) != string(in.Params) {
			t.Fatalf("roundtrip mismatch: in=%#v out=%#v", in, out)
		}
	})
}

func TestResponseRoundtripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := Response{
			Status: Status(rapid.IntRange(1, 3).Draw(t, "status")),
			Output: rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(t, "output"),
			Error:  rapid.String().Draw(t, "error"),
		}
		b, err := EncodeResponse(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := DecodeResponse(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Status != in.Status || string(out.Output) != string(in.Output) || out.Error != in.Error {
			t.Fatalf("roundtrip mismatch: in=%#v out=%#v", in, out)
		}
	})
}
