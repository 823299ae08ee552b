package sasstate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes v into RFC-8785-style canonical JSON: object keys
// in lexicographic order, no insignificant whitespace. encoding/json already
// emits compact output and sorts map keys; round-tripping through a generic
// map normalizes struct field order the same way, which is sufficient for
// the commitment and MAC inputs this package computes over.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sasstate: marshal for canonicalization: %w", err)
	}

	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("sasstate: decode for canonicalization: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("sasstate: encode canonical form: %w", err)
	}
	// json.Encoder.Encode appends a trailing newline; canonical JSON has none.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
