package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/ratioking/app/feed"
	"github.com/lysyi3m/ratioking/app/qbittorrent"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	Start()
	GetDuration() time.Duration
}

type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Collaborator contracts consumed by PollTask. The concrete
// implementations live in app/feed, app/torrent, app/qbittorrent, and
// app/telegram; tests substitute fakes.

type FeedSource interface {
	Newest(ctx context.Context) (*feed.Item, error)
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Submitter interface {
	Add(ctx context.Context, add qbittorrent.AddRequest) error
}

type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, message string) error
}
