package dto

import "time"

type ChannelOutput struct {
	ID      string
	Volume  float64
	Playing bool
	Status  string
}

type SetVolumeInput struct {
	ChannelID string
	Volume    float64
}

type SaveMixInput struct {
	Name string
}

type MixOutput struct {
	Name    string
	SavedAt time.Time
	Sounds  []SoundOutput
}

type SoundOutput struct {
	Name    string
	Playing bool
	Volume  float64
	// HasVolume is false for stored records without a volume.
	HasVolume bool
}

type RestoreOutput struct {
	Restored bool
}
