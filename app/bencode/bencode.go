// Package bencode implements the self-describing, length-prefixed binary
// encoding used by torrent metadata files: integers, byte strings, lists,
// and dictionaries with byte-string keys. The decoder is a pure function
// over bytes and never reads past the supplied buffer.
package bencode

import "errors"

// The four decode failure forms. Errors returned by Decode wrap exactly
// one of these, so callers can classify failures with errors.Is.
var (
	ErrUnexpectedEOF = errors.New("bencode: unexpected end of data")
	ErrInvalidLength = errors.New("bencode: invalid length prefix")
	ErrInvalidToken  = errors.New("bencode: invalid token")
	ErrUnterminated  = errors.New("bencode: unterminated list or dictionary")
)

type Kind int

const (
	KindInteger Kind = iota
	KindBytes
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	}
	return "unknown"
}

// Node is one decoded value. Exactly one of Int, Bytes, List, or Dict is
// meaningful, selected by Kind.
type Node struct {
	Kind  Kind
	Int   int64
	Bytes []byte
	List  []Node
	Dict  []DictEntry
}

// DictEntry preserves dictionary key order as encountered in the input.
type DictEntry struct {
	Key   []byte
	Value Node
}

// Lookup returns the value stored under key in a dictionary node.
func (n Node) Lookup(key string) (Node, bool) {
	for _, e := range n.Dict {
		if string(e.Key) == key {
			return e.Value, true
		}
	}
	return Node{}, false
}
