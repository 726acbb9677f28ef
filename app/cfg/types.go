package cfg

type Cfg struct {
	// qBittorrent configuration
	QBUrl  string
	QBUser string
	QBPass string

	// Feed configuration
	RSSUrl    string
	UserAgent string

	// Download parameters passed to qBittorrent
	SavePath         string
	Category         string
	Tags             string
	RatioLimit       float64
	SeedingTimeLimit int

	// Polling and cooldown
	IntervalMinutes   int
	DownloadSpeedMBps float64
	CooldownFallback  int // seconds
	MaxTorrentBytes   int64

	// State persistence
	StateFile string

	// HTTP API
	Port         string
	APIAccessKey string

	// Telegram notifications
	TelegramBotToken string
	TelegramChatID   string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// RateBytesPerSec converts the configured download speed (MB/s, 1024-based)
// into whole bytes per second for the cooldown calculation.
func (c *Cfg) RateBytesPerSec() int64 {
	if c.DownloadSpeedMBps <= 0 {
		return 0
	}
	return int64(c.DownloadSpeedMBps * 1024 * 1024)
}
