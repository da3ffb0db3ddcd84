package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMode = errors.New("reconcile: invalid upsert mode")

// Action is the outcome decided for one payload.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Policy decides what happens to existing and missing records.
type Policy struct {
	// UpdateExisting overwrites a matching record; otherwise it is skipped.
	UpdateExisting bool
	// CreateMissing creates a record when no match exists; otherwise the
	// payload is skipped.
	CreateMissing bool
}

// Mode names accepted by ImportPolicy and SyncPolicy.
const (
	ModeUpdate = "update"
	ModeSkip   = "skip"
	ModeCreate = "create"
)

// ImportPolicy maps a seed import mode. "update" overwrites existing
// records, "skip" leaves them untouched. Missing records are always created.
func ImportPolicy(mode string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeUpdate:
		return Policy{UpdateExisting: true, CreateMissing: true}, nil
	case ModeSkip:
		return Policy{UpdateExisting: false, CreateMissing: true}, nil
	default:
		return Policy{}, fmt.Errorf("%w %q for import (want update or skip)", ErrInvalidMode, mode)
	}
}

// SyncPolicy maps a sync mode. Existing records are always updated; "create"
// also creates missing ones while "skip" leaves them out.
func SyncPolicy(mode string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeCreate:
		return Policy{UpdateExisting: true, CreateMissing: true}, nil
	case ModeSkip:
		return Policy{UpdateExisting: true, CreateMissing: false}, nil
	default:
		return Policy{}, fmt.Errorf("%w %q for sync (want skip or create)", ErrInvalidMode, mode)
	}
}

// Decide applies the policy to a lookup result.
func (p Policy) Decide(exists bool) Action {
	switch {
	case exists && p.UpdateExisting:
		return ActionUpdate
	case !exists && p.CreateMissing:
		return ActionCreate
	default:
		return ActionSkip
	}
}
