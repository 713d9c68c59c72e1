package beatv1

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals beat.v1 messages as JSON.
//
// It is registered under the name "json" so Connect clients and handlers
// negotiate application/json and application/connect+json.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
