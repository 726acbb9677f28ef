package bencode

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decode parses a single value starting at the beginning of data.
// Trailing bytes after the value are ignored.
func Decode(data []byte) (Node, error) {
	node, _, err := DecodeAt(data, 0)
	return node, err
}

// DecodeAt parses one value starting at offset and returns it together
// with the offset immediately following it. Malformed or truncated input
// yields an error wrapping one of ErrUnexpectedEOF, ErrInvalidLength,
// ErrInvalidToken, or ErrUnterminated.
func DecodeAt(data []byte, offset int) (Node, int, error) {
	if offset < 0 || offset >= len(data) {
		return Node{}, 0, fmt.Errorf("%w at offset %d", ErrUnexpectedEOF, offset)
	}

	switch c := data[offset]; {
	case c == 'i':
		return decodeInteger(data, offset)
	case c == 'l':
		return decodeList(data, offset)
	case c == 'd':
		return decodeDict(data, offset)
	case c >= '0' && c <= '9':
		return decodeBytes(data, offset)
	default:
		return Node{}, 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidToken, c, offset)
	}
}

func decodeInteger(data []byte, offset int) (Node, int, error) {
	end := bytes.IndexByte(data[offset+1:], 'e')
	if end < 0 {
		return Node{}, 0, fmt.Errorf("%w: integer opened at offset %d", ErrUnexpectedEOF, offset)
	}

	digits := data[offset+1 : offset+1+end]
	value, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return Node{}, 0, fmt.Errorf("%w: integer %q at offset %d", ErrInvalidToken, digits, offset)
	}

	return Node{Kind: KindInteger, Int: value}, offset + end + 2, nil
}

func decodeBytes(data []byte, offset int) (Node, int, error) {
	i := offset
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
	}
	if i == len(data) {
		return Node{}, 0, fmt.Errorf("%w: string length opened at offset %d", ErrUnexpectedEOF, offset)
	}
	if data[i] != ':' {
		return Node{}, 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidLength, data[offset:i+1], offset)
	}

	length, err := strconv.ParseInt(string(data[offset:i]), 10, 64)
	if err != nil {
		return Node{}, 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidLength, data[offset:i], offset)
	}

	start := i + 1
	end := int64(start) + length
	if end > int64(len(data)) {
		return Node{}, 0, fmt.Errorf("%w: string of %d bytes at offset %d", ErrUnexpectedEOF, length, offset)
	}

	return Node{Kind: KindBytes, Bytes: data[start:end]}, int(end), nil
}

func decodeList(data []byte, offset int) (Node, int, error) {
	node := Node{Kind: KindList, List: []Node{}}

	off := offset + 1
	for {
		if off >= len(data) {
			return Node{}, 0, fmt.Errorf("%w: list opened at offset %d", ErrUnterminated, offset)
		}
		if data[off] == 'e' {
			return node, off + 1, nil
		}

		item, next, err := DecodeAt(data, off)
		if err != nil {
			return Node{}, 0, err
		}
		node.List = append(node.List, item)
		off = next
	}
}

func decodeDict(data []byte, offset int) (Node, int, error) {
	node := Node{Kind: KindDict, Dict: []DictEntry{}}

	off := offset + 1
	for {
		if off >= len(data) {
			return Node{}, 0, fmt.Errorf("%w: dictionary opened at offset %d", ErrUnterminated, offset)
		}
		if data[off] == 'e' {
			return node, off + 1, nil
		}

		key, next, err := DecodeAt(data, off)
		if err != nil {
			return Node{}, 0, err
		}
		if key.Kind != KindBytes {
			return Node{}, 0, fmt.Errorf("%w: dictionary key must be a byte string, got %s at offset %d", ErrInvalidToken, key.Kind, off)
		}

		value, afterValue, err := DecodeAt(data, next)
		if err != nil {
			return Node{}, 0, err
		}

		// Duplicate keys: last write wins, original position kept
		replaced := false
		for i := range node.Dict {
			if bytes.Equal(node.Dict[i].Key, key.Bytes) {
				node.Dict[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			node.Dict = append(node.Dict, DictEntry{Key: key.Bytes, Value: value})
		}

		off = afterValue
	}
}
