package feed

import (
	"net/url"
	"strings"
)

const torrentSuffix = ".torrent"

var torrentMediaTypes = map[string]bool{
	"application/x-bittorrent": true,
	"application/octet-stream": true,
}

// ResolveTorrentURL derives the download URL for an entry's torrent
// file. Preference order: an enclosure whose URL path contains
// ".torrent", then an enclosure with a recognized torrent/binary media
// type, then the entry link itself if its path contains ".torrent".
// Only http and https URLs qualify; anything else yields "".
func ResolveTorrentURL(item *Item) string {
	for _, enclosure := range item.Enclosures {
		if pathHasTorrentSuffix(enclosure.URL) {
			return enclosure.URL
		}
	}

	for _, enclosure := range item.Enclosures {
		if torrentMediaTypes[strings.ToLower(enclosure.Type)] && isWebURL(enclosure.URL) {
			return enclosure.URL
		}
	}

	if pathHasTorrentSuffix(item.Link) {
		return item.Link
	}

	return ""
}

func pathHasTorrentSuffix(raw string) bool {
	parsed, ok := parseWebURL(raw)
	if !ok {
		return false
	}
	return strings.Contains(parsed.Path, torrentSuffix)
}

func isWebURL(raw string) bool {
	_, ok := parseWebURL(raw)
	return ok
}

func parseWebURL(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, false
	}
	return parsed, true
}
