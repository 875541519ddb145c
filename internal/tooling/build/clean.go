package build

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Clean removes every file in the combined directory (directories inside
// it are left alone), the generated header and source, and the state
// file. A missing combined directory is an error. It returns the removed
// paths.
func (p *Pipeline) Clean() ([]string, error) {
	m := p.Manifest
	dir := m.Path(m.CombinedDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list combined directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}

	for _, path := range []string{m.HeaderArtifact().Output, m.SourceArtifact().Output, m.StatePath()} {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}

	p.Logger.Info("clean complete", zap.Int("removed", len(removed)))
	return removed, nil
}

// CleanTargets lists what Clean would remove without removing anything.
func (p *Pipeline) CleanTargets() ([]string, error) {
	m := p.Manifest
	dir := m.Path(m.CombinedDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list combined directory: %w", err)
	}

	var targets []string
	for _, entry := range entries {
		if !entry.IsDir() {
			targets = append(targets, filepath.Join(dir, entry.Name()))
		}
	}
	for _, path := range []string{m.HeaderArtifact().Output, m.SourceArtifact().Output, m.StatePath()} {
		if _, err := os.Stat(path); err == nil {
			targets = append(targets, path)
		}
	}
	return targets, nil
}
