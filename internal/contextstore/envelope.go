package contextstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is written into every persisted document.
const SchemaVersion = 1

// ErrUnknownVersion is returned for documents written by an incompatible schema.
var ErrUnknownVersion = errors.New("unknown schema version")

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	return json.Marshal(envelope{V: SchemaVersion, Data: data})
}

func decode(raw []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshaling envelope: %w", err)
	}
	if env.V != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, env.V)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("unmarshaling document: %w", err)
	}
	return nil
}
