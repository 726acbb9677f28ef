package state

// State is the durable record the rule engine consults: the identifier
// of the last processed entry, when it was submitted, and until when
// new submissions stay suppressed. All instants are epoch seconds.
type State struct {
	LastGUID      string `json:"last_guid"`
	LastActionAt  int64  `json:"last_dl_ts"`
	CooldownUntil int64  `json:"cooldown_until"`
}
