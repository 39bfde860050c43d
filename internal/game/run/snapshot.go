package run

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is bumped whenever the snapshot layout changes
// incompatibly.
const SnapshotVersion = 1

type envelope struct {
	Version int  `json:"version"`
	Run     *Run `json:"run"`
}

// Snapshot serialises the whole run, including any encounter in progress.
// The bytes are opaque to storage.
func (r *Run) Snapshot() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(envelope{Version: SnapshotVersion, Run: r})
	if err != nil {
		return nil, fmt.Errorf("encoding run %s: %w", r.ID, err)
	}
	return data, nil
}

// Restore decodes a snapshot and binds it to deps.
//
// Precondition: deps.Content and deps.Source must be non-nil.
// Postcondition: Returns a run ready for actions, or an error when the
// snapshot is malformed or references content that no longer exists.
func Restore(data []byte, deps Deps) (*Run, error) {
	if deps.Content == nil || deps.Source == nil {
		panic("run.Restore: precondition violated: content and source must be non-nil")
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if env.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d unsupported (want %d)", env.Version, SnapshotVersion)
	}
	r := env.Run
	if r == nil || r.Player == nil || r.Floor == nil {
		return nil, fmt.Errorf("snapshot is missing player or floor state")
	}
	if err := r.bind(deps); err != nil {
		return nil, fmt.Errorf("binding snapshot %s: %w", r.ID, err)
	}
	return r, nil
}
