package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/ratioking/app/bencode"
	"github.com/lysyi3m/ratioking/app/engine"
	"github.com/lysyi3m/ratioking/app/feed"
	"github.com/lysyi3m/ratioking/app/qbittorrent"
	"github.com/lysyi3m/ratioking/app/state"
)

var testNow = time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)

type memStore struct {
	current state.State
	saved   []state.State
	saveErr error
}

func (m *memStore) Load() state.State {
	return m.current
}

func (m *memStore) Save(st state.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.current = st
	m.saved = append(m.saved, st)
	return nil
}

type fakeSource struct {
	item  *feed.Item
	err   error
	calls int
}

func (f *fakeSource) Newest(ctx context.Context) (*feed.Item, error) {
	f.calls++
	return f.item, f.err
}

type fakeFetcher struct {
	raw   []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.raw, f.err
}

type fakeSubmitter struct {
	err  error
	adds []qbittorrent.AddRequest
}

func (f *fakeSubmitter) Add(ctx context.Context, add qbittorrent.AddRequest) error {
	if f.err != nil {
		return f.err
	}
	f.adds = append(f.adds, add)
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Enabled() bool {
	return true
}

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

type fixture struct {
	task      *PollTask
	store     *memStore
	source    *fakeSource
	fetcher   *fakeFetcher
	submitter *fakeSubmitter
	notifier  *fakeNotifier
}

func newFixture(st state.State, item *feed.Item) *fixture {
	f := &fixture{
		store:     &memStore{current: st},
		source:    &fakeSource{item: item},
		fetcher:   &fakeFetcher{},
		submitter: &fakeSubmitter{},
		notifier:  &fakeNotifier{},
	}

	params := PollParams{
		RateBytesPerSec:  10 * 1024 * 1024,
		FallbackCooldown: 7200,
		SavePath:         "/mnt/ratioking/avistaz",
		Category:         "avistaz",
		Tags:             "ratioking",
		RatioLimit:       -1,
		SeedingTimeLimit: -1,
	}

	f.task = NewPollTask(f.store, engine.New(), f.source, f.fetcher, f.submitter, f.notifier, params)
	f.task.now = func() time.Time { return testNow }
	return f
}

func freshEntry(guid string, contentLength int64) *feed.Item {
	published := testNow.Add(-time.Minute)
	return &feed.Item{
		GUID:          guid,
		Title:         "Great.Release.2160p",
		PublishedAt:   &published,
		ContentLength: contentLength,
		Enclosures: []feed.Enclosure{
			{URL: "https://tracker.example.com/download/1234.torrent"},
		},
	}
}

func TestPollSubmitsAndPersists(t *testing.T) {
	f := newFixture(state.State{}, freshEntry("item-1", 10737418240))

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.submitter.adds) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(f.submitter.adds))
	}
	add := f.submitter.adds[0]
	if add.URL != "https://tracker.example.com/download/1234.torrent" {
		t.Errorf("Unexpected submitted URL: %q", add.URL)
	}
	if add.SavePath != "/mnt/ratioking/avistaz" || add.Category != "avistaz" || add.Tags != "ratioking" {
		t.Errorf("Download parameters not carried through: %+v", add)
	}

	if f.fetcher.calls != 0 {
		t.Error("Metadata must not be fetched when the feed declares a size")
	}

	if len(f.store.saved) != 1 {
		t.Fatalf("Expected 1 state save, got %d", len(f.store.saved))
	}
	saved := f.store.saved[0]
	if saved.LastGUID != "item-1" {
		t.Errorf("Expected last_guid 'item-1', got %q", saved.LastGUID)
	}
	if saved.LastActionAt != testNow.Unix() {
		t.Errorf("Expected last action at %d, got %d", testNow.Unix(), saved.LastActionAt)
	}
	// 10 GiB at 10 MB/s
	if saved.CooldownUntil != testNow.Unix()+1024 {
		t.Errorf("Expected cooldown until now+1024, got %d", saved.CooldownUntil)
	}

	if len(f.notifier.messages) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(f.notifier.messages))
	}
	if !strings.Contains(f.notifier.messages[0], "Great.Release.2160p") {
		t.Errorf("Expected notification to carry the title, got %q", f.notifier.messages[0])
	}
	if !strings.Contains(f.notifier.messages[0], "10 GiB") {
		t.Errorf("Expected human-readable size in notification, got %q", f.notifier.messages[0])
	}
}

func TestPollCooldownSkipsWithoutFetchingFeed(t *testing.T) {
	st := state.State{LastGUID: "item-0", CooldownUntil: testNow.Unix() + 600}
	f := newFixture(st, freshEntry("item-1", 0))

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if f.source.calls != 0 {
		t.Error("Feed must not be fetched while cooldown is active")
	}
	if len(f.submitter.adds) != 0 {
		t.Error("Nothing may be submitted during cooldown")
	}
	if len(f.store.saved) != 0 {
		t.Error("State must stay untouched during cooldown")
	}
}

func TestPollFetchesMetadataWhenFeedDeclaresNoSize(t *testing.T) {
	raw := bencode.Encode(bencode.Dict(
		bencode.Entry("info", bencode.Dict(
			bencode.Entry("length", bencode.Integer(12345)),
			bencode.Entry("name", bencode.String("release.mkv")),
		)),
	))

	f := newFixture(state.State{}, freshEntry("item-1", 0))
	f.fetcher.raw = raw

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if f.fetcher.calls != 1 {
		t.Fatalf("Expected 1 metadata fetch, got %d", f.fetcher.calls)
	}
	if len(f.submitter.adds) != 1 {
		t.Fatal("Expected submission")
	}
	if string(f.submitter.adds[0].Raw) != string(raw) {
		t.Error("Expected fetched torrent bytes to be reused for submission")
	}

	// ceil(12345 / 10485760) = 1
	expected := testNow.Unix() + 1
	if f.store.current.CooldownUntil != expected {
		t.Errorf("Expected cooldown until %d, got %d", expected, f.store.current.CooldownUntil)
	}
}

func TestPollMetadataFailureFallsBackToFixedCooldown(t *testing.T) {
	f := newFixture(state.State{}, freshEntry("item-1", 0))
	f.fetcher.err = errors.New("tracker timeout")

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Metadata failure must not abort the tick, got: %v", err)
	}

	if len(f.submitter.adds) != 1 {
		t.Fatal("Expected submission despite unknown size")
	}
	if len(f.submitter.adds[0].Raw) != 0 {
		t.Error("Expected URL submission without raw bytes")
	}
	if f.store.current.CooldownUntil != testNow.Unix()+7200 {
		t.Errorf("Expected fallback cooldown 7200, got until %d", f.store.current.CooldownUntil)
	}
	if !strings.Contains(f.notifier.messages[0], "unknown size") {
		t.Errorf("Expected 'unknown size' in notification, got %q", f.notifier.messages[0])
	}
}

func TestPollSubmitFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(state.State{}, freshEntry("item-1", 1000))
	f.submitter.err = errors.New("qBittorrent rejected torrent: status 415")

	if err := f.task.Execute(context.Background()); err == nil {
		t.Fatal("Expected submission failure to surface")
	}

	if len(f.store.saved) != 0 {
		t.Error("State must stay untouched after a failed submission")
	}
	if len(f.notifier.messages) != 0 {
		t.Error("No notification may be sent for a failed submission")
	}
}

func TestPollFeedErrorAbortsTick(t *testing.T) {
	f := newFixture(state.State{}, nil)
	f.source.err = errors.New("HTTP error: 502 Bad Gateway")

	if err := f.task.Execute(context.Background()); err == nil {
		t.Fatal("Expected feed failure to surface")
	}

	if len(f.submitter.adds) != 0 || len(f.store.saved) != 0 {
		t.Error("A failed feed fetch must leave everything untouched")
	}
}

func TestPollEmptyFeedIsQuietSkip(t *testing.T) {
	f := newFixture(state.State{}, nil)

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Empty feed is an expected condition, got: %v", err)
	}
	if len(f.submitter.adds) != 0 {
		t.Error("Nothing may be submitted for an empty feed")
	}
}

func TestPollDuplicateSkips(t *testing.T) {
	st := state.State{LastGUID: "item-1"}
	f := newFixture(st, freshEntry("item-1", 1000))

	if err := f.task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(f.submitter.adds) != 0 {
		t.Error("Duplicate entry must not be submitted")
	}
	if len(f.store.saved) != 0 {
		t.Error("Duplicate skip must not rewrite state")
	}
}

func TestPollStateSaveFailureSurfaces(t *testing.T) {
	f := newFixture(state.State{}, freshEntry("item-1", 1000))
	f.store.saveErr = errors.New("disk full")

	if err := f.task.Execute(context.Background()); err == nil {
		t.Fatal("Expected save failure to surface")
	}
	if len(f.notifier.messages) != 0 {
		t.Error("No notification may be sent when state was not persisted")
	}
}
