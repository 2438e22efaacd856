package selector

import (
	"encoding/json"
	"fmt"
)

// decodeParams fills dst (a pointer to a params struct pre-loaded with
// defaults) from the raw parameter mapping of a configuration entry.
// Unknown keys are ignored; a value of the wrong type is a construction
// error the runner reports and skips.
func decodeParams(params map[string]any, dst any) error {
	if len(params) == 0 {
		return nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func requirePositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("parameter %q must be positive, got %d", name, v)
	}
	return nil
}
