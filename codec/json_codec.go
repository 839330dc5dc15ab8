package codec

import (
	"bytes"
	"encoding/json"
)

// JSONCodec uses encoding/json. Decoding keeps numbers as json.Number, so values
// that reach formatters through an `any` are never rounded through float64.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (c *JSONCodec) ContentType() string {
	return ContentTypeJSON
}

// Indent pretty-prints a JSON document with two-space indentation. Input that is
// not valid JSON is returned as is.
func Indent(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
