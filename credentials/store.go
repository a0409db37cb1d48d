package credentials

import "encoding/json"

// Record is the persisted session state: the serialised user profile and the
// opaque bearer token. The two are always saved and cleared together, never
// independently.
type Record struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"token"`
}

// Store is durable local storage for the session credentials. It survives
// process restarts and is treated as authoritative only at startup; after
// that, in-memory state leads and the store is merely kept in sync.
type Store interface {
	// Load returns the persisted record, or (nil, nil) when nothing is stored.
	Load() (*Record, error)
	Save(record Record) error
	// Clear removes the persisted record. Clearing an empty store is not an
	// error.
	Clear() error
}
