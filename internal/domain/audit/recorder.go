// Package audit defines the domain contract for change auditing.
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
package audit

import (
	"context"

	"comercio/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionRestore  Action = "restore"
	ActionFinalize Action = "finalize"
	ActionCancel   Action = "cancel"
	ActionVoid     Action = "void"
	ActionProcess  Action = "process"
	ActionReject   Action = "reject"
)

// Recorder records entity changes for audit purposes.
type Recorder interface {
	// LogChange records a change entry. Failures should not abort the
	// business operation; callers log and continue.
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// NopRecorder discards all entries. Used in tests and tools.
type NopRecorder struct{}

// LogChange implements Recorder.
func (NopRecorder) LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error {
	return nil
}

var _ Recorder = NopRecorder{}
