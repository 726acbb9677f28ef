package bencode

import (
	"bytes"
	"strconv"
)

// Encode serializes a node back to its wire form. Dictionaries are
// written in stored key order, so decoding followed by encoding
// reproduces canonical input byte for byte.
func Encode(n Node) []byte {
	var buf bytes.Buffer
	encodeTo(&buf, n)
	return buf.Bytes()
}

func encodeTo(buf *bytes.Buffer, n Node) {
	switch n.Kind {
	case KindInteger:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(n.Int, 10))
		buf.WriteByte('e')
	case KindBytes:
		buf.WriteString(strconv.Itoa(len(n.Bytes)))
		buf.WriteByte(':')
		buf.Write(n.Bytes)
	case KindList:
		buf.WriteByte('l')
		for _, item := range n.List {
			encodeTo(buf, item)
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		for _, entry := range n.Dict {
			encodeTo(buf, Node{Kind: KindBytes, Bytes: entry.Key})
			encodeTo(buf, entry.Value)
		}
		buf.WriteByte('e')
	}
}

// Integer, Bytes, List, and Dict are convenience constructors used when
// building metadata trees programmatically.

func Integer(v int64) Node {
	return Node{Kind: KindInteger, Int: v}
}

func Bytes(b []byte) Node {
	return Node{Kind: KindBytes, Bytes: b}
}

func String(s string) Node {
	return Node{Kind: KindBytes, Bytes: []byte(s)}
}

func List(items ...Node) Node {
	return Node{Kind: KindList, List: items}
}

func Dict(entries ...DictEntry) Node {
	return Node{Kind: KindDict, Dict: entries}
}

func Entry(key string, value Node) DictEntry {
	return DictEntry{Key: []byte(key), Value: value}
}
