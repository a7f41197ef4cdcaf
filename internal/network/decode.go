package network

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeJSON decodes a single JSON value from body into v. Wire keys are
// snake_case and map onto Go fields through their json tags; trailing data
// after the value is rejected.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
