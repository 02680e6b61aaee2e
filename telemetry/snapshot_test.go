package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     42,
		SchoolWidth: 50,
		Tick:        1000,
		SimTime:     16.5,
		Agents: []AgentSnapshot{
			{
				Type:          1,
				Position:      r3.Vec{X: 1.5, Y: -2, Z: 3.25},
				Forward:       r3.Vec{Z: 1},
				Target:        r3.Vec{X: 1},
				Speed:         4,
				IntervalStart: 16.2,
			},
		},
		Lures: []LureSnapshot{
			{Name: "shark", Position: r3.Vec{X: 10}, Index: 1, Weight: -2, Enabled: true},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkPolarized,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000_polarized.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.Tick != 1000 || loaded.SchoolWidth != 50 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(loaded.Agents))
	}
	if loaded.Agents[0] != snapshot.Agents[0] {
		t.Errorf("agent mismatch: got %+v, want %+v", loaded.Agents[0], snapshot.Agents[0])
	}
	if len(loaded.Lures) != 1 || loaded.Lures[0] != snapshot.Lures[0] {
		t.Errorf("lure mismatch: %+v", loaded.Lures)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkPolarized {
		t.Error("bookmark not preserved")
	}
}

func TestSnapshotWithoutBookmark(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 7}, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_7.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	data, _ := json.Marshal(Snapshot{Version: SnapshotVersion + 1})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveSnapshotLeavesOnlyFinalFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3}, dir); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "snapshot_3.json" {
		t.Errorf("expected a single snapshot file, got %v", entries)
	}
}

func TestSnapshotNameSanitizesType(t *testing.T) {
	snap := &Snapshot{Tick: 9, Bookmark: &Bookmark{Type: "manual save/1"}}
	if got := SnapshotName(snap); got != "snapshot_9_manual_save_1.json" {
		t.Errorf("got %q", got)
	}
}
