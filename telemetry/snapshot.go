package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/spatial/r3"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds the school state needed to resume or inspect a run.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	SchoolWidth float64 `json:"school_width"`
	Tick        int32   `json:"tick"`
	SimTime     float64 `json:"sim_time"`

	Agents []AgentSnapshot `json:"agents"`
	Lures  []LureSnapshot  `json:"lures,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentSnapshot holds one agent's state.
type AgentSnapshot struct {
	Type          uint8   `json:"type"`
	Position      r3.Vec  `json:"position"`
	Forward       r3.Vec  `json:"forward"`
	Previous      r3.Vec  `json:"previous"`
	Target        r3.Vec  `json:"target"`
	Speed         float64 `json:"speed"`
	IntervalStart float64 `json:"interval_start"`
}

// LureSnapshot records where a lure was and how far into its schedule.
type LureSnapshot struct {
	Name     string         `json:"name"`
	Position r3.Vec         `json:"position"`
	Index    int            `json:"index"`
	Elapsed  float64        `json:"elapsed"`
	Weight   float64        `json:"weight"`
	Enabled  bool           `json:"enabled"`
	Drift    *DriftSnapshot `json:"drift,omitempty"`
}

// DriftSnapshot is the leg a drifting lure was on.
type DriftSnapshot struct {
	Previous r3.Vec  `json:"previous"`
	Target   r3.Vec  `json:"target"`
	Timer    float64 `json:"timer"`
	Waypoint int     `json:"waypoint"` // Next waypoint index; 0 for other sources
}

// SnapshotName returns the file name used for snap: the tick, plus the
// bookmark type when there is one.
func SnapshotName(snap *Snapshot) string {
	name := fmt.Sprintf("snapshot_%d", snap.Tick)
	if snap.Bookmark != nil {
		name += "_" + strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return '_'
		}, string(snap.Bookmark.Type))
	}
	return name + ".json"
}

// SaveSnapshot writes snap into dir and returns its path. The file is
// written under a temporary name and renamed into place.
func SaveSnapshot(snap *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(snap))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. Other format
// versions are rejected.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: version %d, want %d", path, snap.Version, SnapshotVersion)
	}
	return &snap, nil
}
