package task

import (
	"encoding/json"
	"fmt"
)

// Args is the ordered argument list of a job. Each element is kept as raw
// JSON so that values round-trip through the broker unchanged.
type Args []json.RawMessage

// NewArgs encodes values into an Args list.
func NewArgs(values ...any) (Args, error) {
	args := make(Args, 0, len(values))
	for i, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		args = append(args, raw)
	}
	return args, nil
}

// Len returns the number of arguments.
func (a Args) Len() int {
	return len(a)
}

// Decode unmarshals the i-th argument into v.
func (a Args) Decode(i int, v any) error {
	if i < 0 || i >= len(a) {
		return fmt.Errorf("argument %d out of range (have %d)", i, len(a))
	}
	if err := json.Unmarshal(a[i], v); err != nil {
		return fmt.Errorf("failed to decode argument %d: %w", i, err)
	}
	return nil
}

// Bind decodes the arguments positionally into targets. The number of
// targets must match the number of arguments.
func (a Args) Bind(targets ...any) error {
	if len(targets) != len(a) {
		return fmt.Errorf("expected %d arguments, got %d", len(targets), len(a))
	}
	for i, target := range targets {
		if err := a.Decode(i, target); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes a nil list as an empty array.
func (a Args) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]json.RawMessage(a))
}
