// Package torrent recovers the payload size of a candidate torrent,
// from the feed's declared length when available, otherwise from the
// torrent metadata itself.
package torrent

import (
	"github.com/lysyi3m/ratioking/app/bencode"
	"github.com/lysyi3m/ratioking/app/feed"
)

// ResolveSize determines the best-known payload size in bytes. The
// feed-declared length is authoritative; raw metadata bytes are only
// consulted when the feed stays silent. Size unavailability is an
// expected outcome, reported via the second return value, never an
// error.
func ResolveSize(entry *feed.Item, raw []byte) (int64, bool) {
	if entry != nil && entry.ContentLength > 0 {
		return entry.ContentLength, true
	}
	if len(raw) == 0 {
		return 0, false
	}
	return sizeFromMetadata(raw)
}

func sizeFromMetadata(raw []byte) (int64, bool) {
	root, err := bencode.Decode(raw)
	if err != nil || root.Kind != bencode.KindDict {
		return 0, false
	}

	info, ok := root.Lookup("info")
	if !ok || info.Kind != bencode.KindDict {
		return 0, false
	}

	// Single-file torrent
	if length, ok := info.Lookup("length"); ok && length.Kind == bencode.KindInteger {
		return length.Int, true
	}

	// Multi-file torrent: sum the per-file lengths, skipping malformed
	// elements
	files, ok := info.Lookup("files")
	if !ok || files.Kind != bencode.KindList {
		return 0, false
	}

	var total int64
	for _, file := range files.List {
		if file.Kind != bencode.KindDict {
			continue
		}
		length, ok := file.Lookup("length")
		if !ok || length.Kind != bencode.KindInteger {
			continue
		}
		total += length.Int
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}
