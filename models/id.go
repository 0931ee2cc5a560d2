package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a record identifier as issued by the hospital API. Older API
// versions send numbers, newer ones strings; both decode to the same value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
