package output

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON marshals any result record with indentation for machine
// consumers and piping.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result JSON: %w", err)
	}
	return nil
}
