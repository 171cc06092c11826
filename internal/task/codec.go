package task

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/clusterexec/internal/errors"
)

// Encode serializes a record for transit.
func Encode[P, R any](r *Record[P, R]) ([]byte, error) {
	if r == nil {
		return nil, errors.New("task: cannot encode nil record")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("task: encode record %d: %w", r.ID, err)
	}
	return data, nil
}

// Decode parses a payload produced by Encode. Every failure wraps
// errors.ErrUndecodablePayload, including a payload whose status is not a
// known Status.
func Decode[P, R any](data []byte) (*Record[P, R], error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("task: empty payload: %w", errors.ErrUndecodablePayload)
	}

	var r Record[P, R]
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("task: %v: %w", err, errors.ErrUndecodablePayload)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("task: unknown status %q: %w", r.Status, errors.ErrUndecodablePayload)
	}
	return &r, nil
}
