package feed

import (
	"time"
)

// Item is one normalized feed entry, representing one candidate torrent.
type Item struct {
	GUID          string
	Title         string
	Link          string
	PublishedAt   *time.Time
	ContentLength int64 // bytes declared by the feed, 0 when absent
	Enclosures    []Enclosure
}

type Enclosure struct {
	URL    string
	Type   string
	Length int64
}
