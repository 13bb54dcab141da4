package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString records whether a JSON field was sent at all, which a plain
// string cannot express for PATCH bodies:
//   - Present=false: field absent
//   - Present=true, Value=nil: field is null
//   - Present=true, Value!=nil: field carries a string, possibly empty
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called for fields present in the document.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// String returns the value, or "" when absent or null.
func (o OptionalString) String() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}
