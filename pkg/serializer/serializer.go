package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type Serializer interface {
	Serialize(val interface{}) ([]byte, error)
	Deserialize(b []byte, val interface{}) error
}

var (
	JSON    Serializer = jsonSerializer{}
	MsgPack Serializer = msgpackSerializer{tag: "json"}
)

// ByName returns the serializer for a state file format.
func ByName(name string) (Serializer, error) {
	switch name {
	case "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	}
	return nil, fmt.Errorf("unknown serializer: %s", name)
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(val interface{}) ([]byte, error) {
	return json.Marshal(val)
}

func (jsonSerializer) Deserialize(b []byte, val interface{}) error {
	return json.Unmarshal(b, val)
}

// msgpackSerializer reads field names from tag so both formats share the
// same keys.
type msgpackSerializer struct {
	tag string
}

func (s msgpackSerializer) Serialize(val interface{}) ([]byte, error) {
	var buf bytes.Buffer

	encoder := msgpack.GetEncoder()
	defer msgpack.PutEncoder(encoder)
	encoder.Reset(&buf)
	encoder.SetCustomStructTag(s.tag)

	if err := encoder.Encode(val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s msgpackSerializer) Deserialize(b []byte, val interface{}) error {
	decoder := msgpack.GetDecoder()
	defer msgpack.PutDecoder(decoder)
	decoder.Reset(bytes.NewReader(b))
	decoder.SetCustomStructTag(s.tag)

	return decoder.Decode(val)
}
