package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by domain so distinct entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	return derive(trimmed, true)
}

// ExactUUID is UUID without key normalization: keys differing only in case
// or spacing get different ids.
func ExactUUID(key string) uuid.UUID {
	if key == "" {
		return uuid.Nil
	}
	return derive(key, false)
}

func derive(key string, normalize bool) uuid.UUID {
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(normalize))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid
}

// BlockUUID identifies the block at position index with the given canonical
// encoding. Identical text converts to identical ids; any change in the
// encoding changes the id.
func BlockUUID(index int, canonical string) uuid.UUID {
	return ExactUUID("bulkload:block:" + strconv.Itoa(index) + ":" + canonical)
}

// EntryUUID identifies one row outcome inside a run.
func EntryUUID(runID uuid.UUID, collection, key string, line int) uuid.UUID {
	return ExactUUID("bulkload:entry:" + runID.String() + ":" + collection + ":" + strconv.Itoa(line) + ":" + key)
}
