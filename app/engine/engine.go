// Package engine holds the pure decision logic: the gating rules that
// decide whether the newest feed entry is submitted, and the cooldown
// calculation that sizes the quiescence period afterwards.
package engine

import (
	"time"

	"github.com/lysyi3m/ratioking/app/feed"
	"github.com/lysyi3m/ratioking/app/state"
)

// FreshWindow is the maximum age an entry may have to still be eligible.
const FreshWindow = 10 * time.Minute

type Engine struct {
	freshWindow time.Duration
}

func New() *Engine {
	return &Engine{freshWindow: FreshWindow}
}

// CooldownActive reports whether the persisted cooldown still covers
// now. The orchestrator consults this before touching the feed at all;
// no external call is made while a cooldown runs.
func (e *Engine) CooldownActive(st state.State, now time.Time) bool {
	return now.Unix() < st.CooldownUntil
}

// Evaluate runs the gating rules in their fixed order: cooldown, feed
// availability, duplicate, freshness, URL resolvability. The order is
// load-bearing; tests pin it.
func (e *Engine) Evaluate(st state.State, now time.Time, entry *feed.Item) Decision {
	if e.CooldownActive(st, now) {
		return skip(SkipCooldownActive)
	}

	if entry == nil {
		return skip(SkipFeedUnavailable)
	}

	if st.LastGUID != "" && entry.GUID == st.LastGUID {
		return skip(SkipDuplicate)
	}

	if entry.PublishedAt == nil || now.Sub(*entry.PublishedAt) > e.freshWindow {
		return skip(SkipTooOld)
	}

	torrentURL := feed.ResolveTorrentURL(entry)
	if torrentURL == "" {
		return skip(SkipNoTorrentURL)
	}

	return proceed(entry, torrentURL)
}
