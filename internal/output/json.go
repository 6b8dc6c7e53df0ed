package output

import (
	"encoding/json"
	"io"
)

// RenderJSON writes the machine-readable report form.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
