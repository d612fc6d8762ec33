package domain

import "strings"

// ChannelID is the display name of a channel, derived once from its asset.
type ChannelID string

// Key is the normalized form used for lookups.
func (id ChannelID) Key() string {
	return strings.ToLower(string(id))
}

type Status int

const (
	StatusUnloaded Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// ChannelState is the observable state of one channel.
// Playing implies Status == StatusReady.
type ChannelState struct {
	ID      ChannelID
	Volume  float64
	Playing bool
	Status  Status
}

// Snapshot is the persistable subset of a channel's state. HasVolume is false
// for records that did not carry a volume; applying one keeps the channel's
// current value.
type Snapshot struct {
	ID        ChannelID
	Volume    float64
	HasVolume bool
	Playing   bool
}

func ClampVolume(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
