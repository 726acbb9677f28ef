package engine

// DefaultCooldown is the fallback quiescence period in seconds, applied
// whenever the torrent size or the transfer rate is unusable.
const DefaultCooldown = 2 * 60 * 60

// CooldownSeconds approximates how long the most recent transfer could
// plausibly take: ceil(sizeBytes / rateBytesPerSec), using integer
// ceiling division so the estimate never undercounts by a second. An
// unknown size or non-positive rate degrades to fallback.
func CooldownSeconds(sizeBytes int64, sizeKnown bool, rateBytesPerSec int64, fallback int64) int64 {
	if !sizeKnown || sizeBytes < 0 || rateBytesPerSec <= 0 {
		return fallback
	}
	return (sizeBytes + rateBytesPerSec - 1) / rateBytesPerSec
}
