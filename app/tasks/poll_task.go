package tasks

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lysyi3m/ratioking/app/engine"
	"github.com/lysyi3m/ratioking/app/feed"
	"github.com/lysyi3m/ratioking/app/qbittorrent"
	"github.com/lysyi3m/ratioking/app/state"
	"github.com/lysyi3m/ratioking/app/torrent"
)

// PollParams carries the tick-invariant configuration: the cooldown
// sizing inputs and the qBittorrent download parameters.
type PollParams struct {
	RateBytesPerSec  int64
	FallbackCooldown int64 // seconds
	SavePath         string
	Category         string
	Tags             string
	RatioLimit       float64
	SeedingTimeLimit int
}

// PollTask drives one polling tick: load state, gate on cooldown, fetch
// the newest feed entry, run the rules, resolve the torrent size,
// submit, persist, notify.
type PollTask struct {
	Task
	store     state.Store
	engine    *engine.Engine
	source    FeedSource
	fetcher   MetadataFetcher
	submitter Submitter
	notifier  Notifier
	params    PollParams
	now       func() time.Time
}

func NewPollTask(store state.Store, ruleEngine *engine.Engine, source FeedSource,
	fetcher MetadataFetcher, submitter Submitter, notifier Notifier, params PollParams) *PollTask {
	return &PollTask{
		Task:      NewTask(TaskTypePoll),
		store:     store,
		engine:    ruleEngine,
		source:    source,
		fetcher:   fetcher,
		submitter: submitter,
		notifier:  notifier,
		params:    params,
		now:       time.Now,
	}
}

func (t *PollTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	st := t.store.Load()
	now := t.now().UTC()

	// Cooldown gates everything; the feed is not even fetched while one
	// is active.
	if t.engine.CooldownActive(st, now) {
		remaining := time.Duration(st.CooldownUntil-now.Unix()) * time.Second
		slog.Info("Cooldown active, skipping poll", "remaining", remaining.String())
		return nil
	}

	entry, err := t.source.Newest(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	decision := t.engine.Evaluate(st, now, entry)
	if !decision.Proceed {
		t.logSkip(decision, entry, now)
		return nil
	}

	size, sizeKnown := torrent.ResolveSize(entry, nil)
	var raw []byte
	if !sizeKnown {
		// The feed declared no size; fetch the torrent file and read it
		// out of the metadata.
		raw, err = t.fetcher.Fetch(ctx, decision.TorrentURL)
		if err != nil {
			slog.Warn("Torrent metadata fetch failed, size stays unknown", "url", decision.TorrentURL, "error", err)
			raw = nil
		} else {
			size, sizeKnown = torrent.ResolveSize(entry, raw)
		}
	}

	cooldown := engine.CooldownSeconds(size, sizeKnown, t.params.RateBytesPerSec, t.params.FallbackCooldown)
	if sizeKnown {
		slog.Info("Cooldown sized to estimated transfer duration",
			"size", humanize.IBytes(uint64(size)),
			"rate_bytes_per_sec", t.params.RateBytesPerSec,
			"cooldown", (time.Duration(cooldown) * time.Second).String())
	} else {
		slog.Info("Torrent size unavailable, using fallback cooldown",
			"cooldown", (time.Duration(cooldown) * time.Second).String())
	}

	slog.Info("Submitting torrent", "title", entry.Title, "url", decision.TorrentURL)
	err = t.submitter.Add(ctx, qbittorrent.AddRequest{
		URL:              decision.TorrentURL,
		Raw:              raw,
		SavePath:         t.params.SavePath,
		Category:         t.params.Category,
		Tags:             t.params.Tags,
		RatioLimit:       t.params.RatioLimit,
		SeedingTimeLimit: t.params.SeedingTimeLimit,
	})
	if err != nil {
		// State stays untouched; the entry gets another chance on a
		// later tick.
		return fmt.Errorf("failed to add torrent: %w", err)
	}

	newState := state.State{
		LastGUID:      entry.GUID,
		LastActionAt:  now.Unix(),
		CooldownUntil: now.Unix() + cooldown,
	}
	if err := t.store.Save(newState); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"title", entry.Title,
		"duration", t.GetDuration(),
		"cooldown", (time.Duration(cooldown) * time.Second).String())

	t.sendNotification(ctx, entry, size, sizeKnown, cooldown)

	return nil
}

func (t *PollTask) logSkip(decision engine.Decision, entry *feed.Item, now time.Time) {
	switch decision.Reason {
	case engine.SkipFeedUnavailable:
		slog.Info("Feed has no entries, skipping poll")
	case engine.SkipDuplicate:
		slog.Info("Newest entry already processed, skipping", "guid", entry.GUID)
	case engine.SkipTooOld:
		age := "unknown"
		if entry.PublishedAt != nil {
			age = now.Sub(*entry.PublishedAt).Round(time.Second).String()
		}
		slog.Info("Newest entry outside freshness window, skipping", "title", entry.Title, "age", age)
	case engine.SkipNoTorrentURL:
		slog.Info("No usable torrent URL on newest entry, skipping", "title", entry.Title)
	default:
		slog.Info("Poll skipped", "reason", string(decision.Reason))
	}
}

func (t *PollTask) sendNotification(ctx context.Context, entry *feed.Item, size int64, sizeKnown bool, cooldown int64) {
	if !t.notifier.Enabled() {
		return
	}

	sizeText := "unknown size"
	if sizeKnown {
		sizeText = humanize.IBytes(uint64(size))
	}

	message := fmt.Sprintf("<b>📥 Added torrent</b>\n\n%s\n\nSize: %s\nCooldown: %s",
		html.EscapeString(entry.Title), sizeText, (time.Duration(cooldown) * time.Second).String())

	if err := t.notifier.Notify(ctx, message); err != nil {
		slog.Warn("Notification failed", "error", err)
	}
}
