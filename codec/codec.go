package codec

// Codec turns envelopes into request bodies and response bodies back into envelopes.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	ContentType() string
}

// ContentTypeJSON is the only content type CKB nodes accept.
const ContentTypeJSON = "application/json"

// Default is the codec used when a client or server is not given one.
var Default Codec = &JSONCodec{}
