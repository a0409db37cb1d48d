package transport

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ID is a backend record identifier. The backend serialises identifiers
// either as JSON strings or as numbers; both normalise to the string form so
// identity comparisons are consistent throughout the client.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return errors.Errorf("[ID.UnmarshalJSON] invalid id value %s", string(data))
}
