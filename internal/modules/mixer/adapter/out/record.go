package out

import (
	"encoding/json"
	"fmt"
	"time"

	"soundblanket/internal/modules/mixer/domain"
)

// soundRecord is one entry of a stored mix. Volume is optional so records
// written without one still load.
type soundRecord struct {
	SoundName string   `json:"sound_name"`
	IsPlaying bool     `json:"is_playing"`
	Volume    *float64 `json:"volume,omitempty"`
}

type mixRecord struct {
	Sounds  []soundRecord `json:"sounds"`
	SavedAt string        `json:"saved_at,omitempty"`
}

func encodeMix(mix domain.Mix) mixRecord {
	rec := mixRecord{Sounds: make([]soundRecord, 0, len(mix.Snapshots))}
	if !mix.SavedAt.IsZero() {
		rec.SavedAt = mix.SavedAt.UTC().Format(time.RFC3339)
	}
	for _, snap := range mix.Snapshots {
		sr := soundRecord{SoundName: string(snap.ID), IsPlaying: snap.Playing}
		if snap.HasVolume {
			v := snap.Volume
			sr.Volume = &v
		}
		rec.Sounds = append(rec.Sounds, sr)
	}
	return rec
}

func decodeMix(name string, rec mixRecord) domain.Mix {
	mix := domain.Mix{Name: name, Snapshots: make([]domain.Snapshot, 0, len(rec.Sounds))}
	if rec.SavedAt != "" {
		if at, err := time.Parse(time.RFC3339, rec.SavedAt); err == nil {
			mix.SavedAt = at
		}
	}
	for _, sr := range rec.Sounds {
		snap := domain.Snapshot{ID: domain.ChannelID(sr.SoundName), Playing: sr.IsPlaying}
		if sr.Volume != nil {
			snap.Volume = domain.ClampVolume(*sr.Volume)
			snap.HasVolume = true
		}
		mix.Snapshots = append(mix.Snapshots, snap)
	}
	return mix
}

func marshalMix(mix domain.Mix) ([]byte, error) {
	payload, err := json.Marshal(encodeMix(mix))
	if err != nil {
		return nil, fmt.Errorf("marshal mix %q: %w", mix.Name, err)
	}
	return payload, nil
}

func unmarshalMix(name string, payload []byte) (domain.Mix, error) {
	var rec mixRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.Mix{}, fmt.Errorf("decode mix %q: %w", name, err)
	}
	return decodeMix(name, rec), nil
}
