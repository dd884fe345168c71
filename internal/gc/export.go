package gc

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteJSON encodes the model as JSON. Decimal values are written as strings
// so no precision is lost.
func (f *GCLogFile) WriteJSON(w io.Writer, indent bool) error {
	encoder := json.NewEncoder(w)
	if indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func (f *GCLogFile) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}
