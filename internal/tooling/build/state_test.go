package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadState_NewFile(t *testing.T) {
	tmpDir := t.TempDir()

	state, err := LoadState(filepath.Join(tmpDir, "state.json"))
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state != nil {
		t.Errorf("Expected nil state for missing file, got %+v", state)
	}
}

func TestSaveAndLoadState(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".schemagen", "state.json")

	originalState := NewState("0.1.0")
	originalState.Resolver = "tree"
	originalState.Injection = "regenerate"
	originalState.GeneratedAt = time.Now().Truncate(time.Second)
	originalState.Entries = []EntryState{
		{Source: "moves/moves.json", Symbol: "Moves", Hash: "hash1"},
		{Source: "worlds/worlds.json", Symbol: "Worlds", Hash: "hash2"},
	}
	originalState.Artifacts["/path/to/schema.h"] = "hash3"

	if err := originalState.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp state file should not remain after save")
	}

	loadedState, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if loadedState.RunID != originalState.RunID {
		t.Errorf("RunID mismatch: expected %s, got %s", originalState.RunID, loadedState.RunID)
	}
	if loadedState.Version != originalState.Version {
		t.Errorf("Version mismatch: expected %s, got %s", originalState.Version, loadedState.Version)
	}
	if !loadedState.GeneratedAt.Equal(originalState.GeneratedAt) {
		t.Errorf("GeneratedAt mismatch: expected %v, got %v", originalState.GeneratedAt, loadedState.GeneratedAt)
	}
	if len(loadedState.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(loadedState.Entries))
	}
	for i, entry := range originalState.Entries {
		if loadedState.Entries[i] != entry {
			t.Errorf("Entry %d mismatch: expected %+v, got %+v", i, entry, loadedState.Entries[i])
		}
	}
	if loadedState.Artifacts["/path/to/schema.h"] != "hash3" {
		t.Errorf("Artifact hash mismatch: got %q", loadedState.Artifacts["/path/to/schema.h"])
	}
}

func TestSaveState_FailureRemovesTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.MkdirAll(filepath.Join(path, "occupied"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := NewState("0.1.0").Save(path); err == nil {
		t.Fatal("Expected Save onto a directory to fail")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp state file should be removed when save fails")
	}
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadState(path); err == nil {
		t.Error("Expected error for corrupt state file")
	}
}

func TestNewState_UniqueRunID(t *testing.T) {
	a, b := NewState("dev"), NewState("dev")
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("Expected distinct run IDs, got %q and %q", a.RunID, b.RunID)
	}
}

func TestStateEntry(t *testing.T) {
	state := NewState("dev")
	state.Entries = []EntryState{{Source: "a.json", Symbol: "A", Hash: "h"}}

	if entry, ok := state.Entry("A"); !ok || entry.Source != "a.json" {
		t.Errorf("Expected entry A, got %+v (found=%v)", entry, ok)
	}
	if _, ok := state.Entry("B"); ok {
		t.Error("Expected no entry for B")
	}
}

func TestComputeHash_Consistency(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")
	content := []byte(`{"type": "object"}`)

	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	hash1, err := computeHash(testFile)
	if err != nil {
		t.Fatalf("computeHash failed: %v", err)
	}
	hash2, err := computeHash(testFile)
	if err != nil {
		t.Fatalf("computeHash failed: %v", err)
	}

	if hash1 != hash2 {
		t.Errorf("Hash should be consistent: %s != %s", hash1, hash2)
	}
	if hash1 != hashContent(content) {
		t.Errorf("File hash should match content hash: %s != %s", hash1, hashContent(content))
	}
}

func TestComputeHash_DifferentContent(t *testing.T) {
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "a.json")
	file2 := filepath.Join(tmpDir, "b.json")

	if err := os.WriteFile(file1, []byte(`{"a": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file2, []byte(`{"a": 2}`), 0644); err != nil {
		t.Fatal(err)
	}

	hash1, _ := computeHash(file1)
	hash2, _ := computeHash(file2)
	if hash1 == hash2 {
		t.Error("Different content should produce different hashes")
	}
}
