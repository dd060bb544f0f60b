package provider

import (
	"strings"

	"github.com/goccy/go-json"
)

// DecodeAppData turns the text stored by an upload back into the data string
// that was handed to UploadAppData. Text that is not a JSON string is returned
// as is.
func DecodeAppData(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, `"`) {
		return raw
	}
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return raw
	}
	return s
}
