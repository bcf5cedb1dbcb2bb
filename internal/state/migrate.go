package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// legacySnapshot is the unversioned layout written before queue entries
// carried probe results: a bare list of built target names.
type legacySnapshot struct {
	SavedAt   time.Time         `json:"saved_at"`
	Requested []string          `json:"requested"`
	Targets   []string          `json:"targets"`
	Selected  map[string]string `json:"selected"`
}

// DecodeSnapshot parses snapshot bytes, upgrading the legacy unversioned
// layout in place. Snapshots from a newer schema are rejected rather than
// misread.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var head struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Version {
	case Version:
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, err
		}
		return &snap, nil
	case "":
		var old legacySnapshot
		if err := json.Unmarshal(data, &old); err != nil {
			return nil, err
		}
		return upgradeLegacy(&old), nil
	default:
		return nil, fmt.Errorf("snapshot version %q is newer than this build supports", head.Version)
	}
}

// upgradeLegacy lifts the bare name list into queue entries. Legacy saves
// recorded only built targets, so every entry is marked ready.
func upgradeLegacy(old *legacySnapshot) *Snapshot {
	snap := &Snapshot{
		Version:   Version,
		SavedAt:   old.SavedAt,
		Requested: old.Requested,
		Selected:  old.Selected,
	}
	for _, name := range old.Targets {
		snap.Queue = append(snap.Queue, Entry{Name: name, Ready: true})
	}
	return snap
}
