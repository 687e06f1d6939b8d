// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package sync

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/models"
)

// ConcurrentEditWindow is how close together two updates must land for
// differing content to count as a conflict. Edits further apart are
// treated as sequential, with the newer copy winning silently.
const ConcurrentEditWindow = 60 * time.Second

// Rule names which heuristic flagged a conflict.
type Rule string

const (
	// RuleVersionMismatch means both copies carry revision numbers
	// and they disagree.
	RuleVersionMismatch Rule = "version"

	// RuleConcurrentEdit means both copies changed within
	// ConcurrentEditWindow of each other with differing content.
	RuleConcurrentEdit Rule = "concurrent_edit"
)

// Conflict describes one record whose local and server copies diverge.
// Detection is advisory: the engine surfaces conflicts but still
// applies the server copy, matching last-writer-wins semantics.
type Conflict struct {
	Kind     models.EntityKind `json:"kind"`
	RecordID string            `json:"record_id"`
	Rule     Rule              `json:"rule"`

	LocalVersion  int64 `json:"local_version,omitempty"`
	ServerVersion int64 `json:"server_version,omitempty"`

	LocalUpdatedAt  time.Time `json:"local_updated_at"`
	ServerUpdatedAt time.Time `json:"server_updated_at"`
}

// HasConflict reports whether the local and server copies of one record
// conflict. It is symmetric: swapping the arguments never changes the
// answer.
//
// When both copies carry a revision number, the numbers decide: a
// mismatch is a conflict regardless of content, and a match is clean.
// Without comparable revisions, copies updated within
// ConcurrentEditWindow of each other are compared for deep equality,
// and differing content inside that window is a conflict. A zero
// version means the backend did not populate one.
func HasConflict(local, server models.Syncable) bool {
	_, conflicting := conflictRule(local, server)
	return conflicting
}

// DetectConflicts pairs server records with cached ones by identifier
// and applies HasConflict to each pair. Server records with no cached
// counterpart are new arrivals, not conflicts.
func DetectConflicts(kind models.EntityKind, cached, server []models.Syncable) []Conflict {
	if len(cached) == 0 || len(server) == 0 {
		return nil
	}

	byID := make(map[string]models.Syncable, len(cached))
	for _, rec := range cached {
		if rec != nil {
			byID[rec.EntityID()] = rec
		}
	}

	var conflicts []Conflict
	for _, remote := range server {
		if remote == nil {
			continue
		}
		local, ok := byID[remote.EntityID()]
		if !ok {
			continue
		}
		rule, conflicting := conflictRule(local, remote)
		if !conflicting {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:            kind,
			RecordID:        remote.EntityID(),
			Rule:            rule,
			LocalVersion:    local.EntityVersion(),
			ServerVersion:   remote.EntityVersion(),
			LocalUpdatedAt:  local.ModifiedAt(),
			ServerUpdatedAt: remote.ModifiedAt(),
		})
	}
	return conflicts
}

// conflictRule applies the version and concurrent-edit heuristics in
// order and names the rule that fired.
func conflictRule(local, server models.Syncable) (Rule, bool) {
	if local == nil || server == nil {
		return "", false
	}

	localVersion, serverVersion := local.EntityVersion(), server.EntityVersion()
	if localVersion > 0 && serverVersion > 0 {
		if localVersion != serverVersion {
			return RuleVersionMismatch, true
		}
		// Same revision is the same record, whatever the bytes say.
		return "", false
	}

	localUpdated, serverUpdated := local.ModifiedAt(), server.ModifiedAt()
	if localUpdated.IsZero() || serverUpdated.IsZero() {
		return "", false
	}
	if absDuration(localUpdated.Sub(serverUpdated)) > ConcurrentEditWindow {
		return "", false
	}
	if deepEqual(local, server) {
		return "", false
	}
	return RuleConcurrentEdit, true
}

// deepEqual compares two records by their canonical JSON encoding.
// Unencodable records compare unequal, which errs toward flagging.
func deepEqual(a, b models.Syncable) bool {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aJSON, bJSON)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
