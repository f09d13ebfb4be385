package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// NullableUUID distinguishes a JSON field that was omitted from one that was
// explicitly set to null. Request bodies use it where "clear this reference"
// and "field missing" must not collapse into the same zero value.
type NullableUUID struct {
	Present bool
	Value   *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler. The decoder only calls it when
// the field appears in the payload, so Present is the omitted-vs-null signal.
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}
