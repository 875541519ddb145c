package build

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// State records what the last successful generate run produced. It is
// persisted next to the artifacts so later runs can report drift.
type State struct {
	// RunID identifies the generate run that wrote this state
	RunID string `json:"run_id"`
	// Version tracks the schemagen version used for the run
	Version string `json:"version"`
	// GeneratedAt records when the run completed
	GeneratedAt time.Time `json:"generated_at"`
	// Resolver and Injection capture the modes that shaped the output
	Resolver  string `json:"resolver"`
	Injection string `json:"injection"`
	// Entries lists the compiled schemas in manifest order
	Entries []EntryState `json:"entries"`
	// Artifacts maps generated file paths to their SHA-256 hashes
	Artifacts map[string]string `json:"artifacts"`
}

// EntryState is the recorded form of one compiled schema
type EntryState struct {
	Source string `json:"source"`
	Symbol string `json:"symbol"`
	// Hash is the SHA-256 of the compact resolved JSON
	Hash string `json:"hash"`
}

// NewState creates an empty state for a new run
func NewState(version string) *State {
	return &State{
		RunID:     uuid.NewString(),
		Version:   version,
		Artifacts: make(map[string]string),
	}
}

// LoadState loads state from path. A missing file yields (nil, nil).
func LoadState(path string) (*State, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	defer file.Close()

	var state State
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	if state.Artifacts == nil {
		state.Artifacts = make(map[string]string)
	}

	return &state, nil
}

// Save persists the state to path with an atomic rename
func (s *State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// Entry returns the recorded entry for symbol
func (s *State) Entry(symbol string) (EntryState, bool) {
	for _, e := range s.Entries {
		if e.Symbol == symbol {
			return e, true
		}
	}
	return EntryState{}, false
}

// RecordArtifact hashes the file at path and stores it
func (s *State) RecordArtifact(path string) error {
	hash, err := computeHash(path)
	if err != nil {
		return fmt.Errorf("failed to compute hash for %s: %w", path, err)
	}
	s.Artifacts[path] = hash
	return nil
}

// hashContent computes the SHA-256 hash of content
func hashContent(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// computeHash computes SHA-256 hash of a file
func computeHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
