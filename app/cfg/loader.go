package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// qBittorrent configuration
	QBUrl  string `long:"qb-url" env:"QB_URL" default:"http://127.0.0.1:8080" description:"qBittorrent WebUI base URL"`
	QBUser string `long:"qb-user" env:"QB_USER" default:"admin" description:"qBittorrent WebUI username"`
	QBPass string `long:"qb-pass" env:"QB_PASS" default:"adminadmin" description:"qBittorrent WebUI password"`

	// Feed configuration
	RSSUrl    string `long:"rss-url" env:"RSS_URL" description:"Torrent RSS/Atom feed URL (required)" required:"true"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RatioKing/1.0" description:"User agent string for HTTP requests"`

	// Download parameters passed to qBittorrent
	SavePath         string  `long:"save-path" env:"SAVE_PATH" default:"/mnt/ratioking/avistaz" description:"Save path for added torrents"`
	Category         string  `long:"category" env:"CATEGORY" default:"avistaz" description:"Category for added torrents"`
	Tags             string  `long:"tags" env:"TAGS" default:"ratioking" description:"Tags for added torrents"`
	RatioLimit       float64 `long:"ratio-limit" env:"RATIO_LIMIT" default:"-1" description:"Share ratio limit (-1 = unlimited)"`
	SeedingTimeLimit int     `long:"seeding-time-limit" env:"SEEDING_TIME_LIMIT" default:"-1" description:"Seeding time limit in minutes (-1 = unlimited)"`

	// Polling and cooldown
	IntervalMinutes   int     `long:"interval" env:"INTERVAL_MINUTES" default:"15" description:"Poll interval in minutes"`
	DownloadSpeedMBps float64 `long:"download-speed" env:"DOWNLOAD_SPEED_MBPS" default:"10" description:"Assumed download speed in MB/s for cooldown sizing"`
	CooldownFallback  int     `long:"cooldown-fallback" env:"COOLDOWN_FALLBACK" default:"7200" description:"Fallback cooldown in seconds when torrent size is unknown"`
	MaxTorrentBytes   int64   `long:"max-torrent-bytes" env:"MAX_TORRENT_BYTES" default:"10485760" description:"Maximum accepted .torrent metadata size in bytes"`

	// State persistence
	StateFile string `long:"state-file" env:"STATE_FILE" default:"./ratioking.state.json" description:"Path to the persisted state document"`

	// HTTP API
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Telegram notifications
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token for notifications (optional)"`
	TelegramChatID   string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID for notifications (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env file, same as the historical deployment setup
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		QBUrl:             raw.QBUrl,
		QBUser:            raw.QBUser,
		QBPass:            raw.QBPass,
		RSSUrl:            raw.RSSUrl,
		UserAgent:         raw.UserAgent,
		SavePath:          raw.SavePath,
		Category:          raw.Category,
		Tags:              raw.Tags,
		RatioLimit:        raw.RatioLimit,
		SeedingTimeLimit:  raw.SeedingTimeLimit,
		IntervalMinutes:   raw.IntervalMinutes,
		DownloadSpeedMBps: raw.DownloadSpeedMBps,
		CooldownFallback:  raw.CooldownFallback,
		MaxTorrentBytes:   raw.MaxTorrentBytes,
		StateFile:         raw.StateFile,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		TelegramBotToken:  raw.TelegramBotToken,
		TelegramChatID:    raw.TelegramChatID,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
