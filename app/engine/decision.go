package engine

import (
	"github.com/lysyi3m/ratioking/app/feed"
)

type SkipReason string

const (
	SkipCooldownActive  SkipReason = "cooldown_active"
	SkipFeedUnavailable SkipReason = "feed_unavailable"
	SkipDuplicate       SkipReason = "duplicate"
	SkipTooOld          SkipReason = "too_old"
	SkipNoTorrentURL    SkipReason = "no_torrent_url"
)

// Decision is the outcome of one rule evaluation: either a skip with a
// reason, or a go-ahead carrying the entry and its derived torrent URL.
type Decision struct {
	Proceed    bool
	Reason     SkipReason
	Entry      *feed.Item
	TorrentURL string
}

func skip(reason SkipReason) Decision {
	return Decision{Reason: reason}
}

func proceed(entry *feed.Item, torrentURL string) Decision {
	return Decision{Proceed: true, Entry: entry, TorrentURL: torrentURL}
}
