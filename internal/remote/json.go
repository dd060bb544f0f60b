package remote

import (
	"bytes"

	"github.com/goccy/go-json"
)

// encodeContent renders data as a JSON string literal, leaving <, > and &
// unescaped.
func encodeContent(data string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decodeRecord(b []byte) (RevisionRecord, error) {
	var record RevisionRecord
	err := json.Unmarshal(b, &record)
	return record, err
}

func encodeRecord(record RevisionRecord) ([]byte, error) {
	return json.Marshal(record)
}
