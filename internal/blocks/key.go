package blocks

import (
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/goliatone/go-cms-bulkload/internal/identity"
)

// Key returns a deterministic id for block at position index.
func Key(block Block, index int) uuid.UUID {
	encoded, err := json.Marshal(block)
	if err != nil {
		return uuid.Nil
	}
	return identity.BlockUUID(index, string(encoded))
}

// Equal reports whether two sequences hold the same blocks in the same
// order, comparing their keys.
func Equal(a, b Sequence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		left, right := Key(a[i], i), Key(b[i], i)
		if left == uuid.Nil || left != right {
			return false
		}
	}
	return true
}

// Empty reports whether value, as stored remotely, holds no blocks.
func Empty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case Sequence:
		return len(v) == 0
	case string:
		return v == "" || v == "[]"
	default:
		return false
	}
}
