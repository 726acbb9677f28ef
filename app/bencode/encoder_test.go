package bencode

import (
	"bytes"
	"testing"
)

func TestEncodePrimitives(t *testing.T) {
	cases := []struct {
		node     Node
		expected string
	}{
		{Integer(42), "i42e"},
		{Integer(-7), "i-7e"},
		{String("spam"), "4:spam"},
		{String(""), "0:"},
		{List(Integer(1), String("a")), "li1e1:ae"},
		{Dict(Entry("k", Integer(5))), "d1:ki5ee"},
	}

	for _, c := range cases {
		got := Encode(c.node)
		if string(got) != c.expected {
			t.Errorf("Encode: expected %q, got %q", c.expected, got)
		}
	}
}

func TestRoundTripIsByteIdentical(t *testing.T) {
	trees := []Node{
		Integer(0),
		String("single file"),
		List(),
		Dict(),
		Dict(
			Entry("announce", String("https://tracker.example.com/announce")),
			Entry("info", Dict(
				Entry("length", Integer(10737418240)),
				Entry("name", String("big.iso")),
				Entry("piece length", Integer(1048576)),
			)),
		),
		Dict(
			Entry("info", Dict(
				Entry("files", List(
					Dict(Entry("length", Integer(100))),
					Dict(Entry("length", Integer(200))),
				)),
				Entry("name", String("multi")),
			)),
		),
	}

	for _, tree := range trees {
		encoded := Encode(tree)

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(tree)) failed: %v", err)
		}

		reencoded := Encode(decoded)
		if !bytes.Equal(encoded, reencoded) {
			t.Errorf("Round trip not byte-identical:\n first: %q\nsecond: %q", encoded, reencoded)
		}
	}
}
