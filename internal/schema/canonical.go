package schema

import "encoding/json"

// MarshalCanonical renders v as deterministic, human-diffable JSON.
// encoding/json already sorts map keys and struct fields keep their
// declaration order, so two structurally equal models always render
// byte-identically. Used for golden files and snapshot payloads.
func MarshalCanonical(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
