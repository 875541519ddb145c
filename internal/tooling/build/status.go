package build

import (
	"os"
	"sort"
)

// ChangeKind describes how an entry or artifact differs from the state
type ChangeKind string

const (
	Unchanged ChangeKind = "unchanged"
	Changed   ChangeKind = "changed"
	New       ChangeKind = "new"
	Removed   ChangeKind = "removed"
	Modified  ChangeKind = "modified"
	Missing   ChangeKind = "missing"
	Failed    ChangeKind = "error"
)

// EntryStatus reports one schema entry
type EntryStatus struct {
	Symbol string
	Source string
	Kind   ChangeKind
	Err    error
}

// ArtifactStatus reports one generated file
type ArtifactStatus struct {
	Path string
	Kind ChangeKind
}

// Report compares the manifest and the files on disk with the last
// recorded generate run.
type Report struct {
	State     *State
	Entries   []EntryStatus
	Artifacts []ArtifactStatus
}

// Clean reports whether nothing changed since the recorded run
func (r *Report) Clean() bool {
	if r.State == nil {
		return false
	}
	for _, e := range r.Entries {
		if e.Kind != Unchanged {
			return false
		}
	}
	for _, a := range r.Artifacts {
		if a.Kind != Unchanged {
			return false
		}
	}
	return true
}

// Status builds a Report. It never writes anything. Entries that fail to
// resolve are reported with Kind Failed rather than aborting the report.
func (p *Pipeline) Status() (*Report, error) {
	state, err := LoadState(p.Manifest.StatePath())
	if err != nil {
		return nil, err
	}

	report := &Report{State: state}
	current := make(map[string]bool, len(p.Manifest.Entries))

	for _, entry := range p.Manifest.Entries {
		current[entry.Symbol] = true
		status := EntryStatus{Symbol: entry.Symbol, Source: entry.Source}

		compact, err := p.Schema(entry.Source)
		switch {
		case err != nil:
			status.Kind = Failed
			status.Err = err
		case state == nil:
			status.Kind = New
		default:
			recorded, ok := state.Entry(entry.Symbol)
			switch {
			case !ok:
				status.Kind = New
			case recorded.Hash != hashContent(compact) || recorded.Source != entry.Source:
				status.Kind = Changed
			default:
				status.Kind = Unchanged
			}
		}
		report.Entries = append(report.Entries, status)
	}

	if state == nil {
		return report, nil
	}

	for _, recorded := range state.Entries {
		if !current[recorded.Symbol] {
			report.Entries = append(report.Entries, EntryStatus{
				Symbol: recorded.Symbol,
				Source: recorded.Source,
				Kind:   Removed,
			})
		}
	}

	paths := make([]string, 0, len(state.Artifacts))
	for path := range state.Artifacts {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		status := ArtifactStatus{Path: path, Kind: Unchanged}
		hash, err := computeHash(path)
		switch {
		case os.IsNotExist(err):
			status.Kind = Missing
		case err != nil:
			status.Kind = Failed
		case hash != state.Artifacts[path]:
			status.Kind = Modified
		}
		report.Artifacts = append(report.Artifacts, status)
	}

	return report, nil
}

// Err returns the error of the first entry that failed to resolve
func (r *Report) Err() error {
	for _, e := range r.Entries {
		if e.Err != nil {
			return e.Err
		}
	}
	return nil
}
