package wire

import "encoding/json"

// Codec marshals and unmarshals wire messages. The encoding is left to
// the deployment; JSONCodec is the default, not a mandated wire format.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// DefaultCodec is the Codec used when a deployment does not configure
// one explicitly.
var DefaultCodec Codec = JSONCodec{}
