package connectrpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec serialises plain Go structs for Connect. It takes the "json"
// name so the Connect protocol's application/json content type selects it.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
