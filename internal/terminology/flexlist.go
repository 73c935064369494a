package terminology

import (
	"bytes"
	"encoding/json"
)

// FlexList tolerates the terminology service returning either a single JSON
// object or an array at the same field.  The irregularity is normalized into
// a slice here, at the wire boundary, so internal logic only ever sees
// arrays.
type FlexList[T any] []T

func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*f = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}
