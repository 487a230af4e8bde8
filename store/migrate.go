package store

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// SchemaVersion is the current format of the locally persisted state blobs.
const SchemaVersion = 2

// migrations steps a stored version to the next one. Versions without an entry
// (including versions newer than SchemaVersion, written by a later build) fall
// through to a full reset of the study keys.
var migrations = map[int]func(kv KeyValue){
	// Pre-versioned and v1 blobs stored cards without grouping payloads and
	// cannot be read back; dropping them matches what a fresh install sees.
	0: resetStudyKeys,
	1: resetStudyKeys,
}

// Migrate brings the key/value store up to SchemaVersion, resetting the
// content and state keys when the stored blobs cannot be carried forward.
func Migrate(kv KeyValue) {
	version := 0
	if raw, ok := kv.Get(KeyCacheVersion); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			version = v
		}
	}

	for version != SchemaVersion {
		step, ok := migrations[version]
		if !ok {
			logrus.WithField("version", version).Warn("unknown cache version, resetting local state")
			resetStudyKeys(kv)
			break
		}
		step(kv)
		version++
	}

	kv.Set(KeyCacheVersion, strconv.Itoa(SchemaVersion))
}

func resetStudyKeys(kv KeyValue) {
	kv.Remove(KeyContent)
	kv.Remove(KeyState)
	kv.Remove(KeyViewed)
}
