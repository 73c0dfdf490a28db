// Package json wraps goccy/go-json with the settings tabprofile uses for
// decoding input records and encoding reports.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Number is a JSON number literal kept as text until converted.
type Number = gojson.Number

// Decoder is the streaming JSON decoder.
type Decoder = gojson.Decoder

// Delim is an array or object delimiter token returned by Decoder.Token.
type Delim = gojson.Delim

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// NewDecoder returns a decoder that keeps numbers as Number so integers
// survive decoding without a float64 round trip.
func NewDecoder(r io.Reader) *Decoder {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// Write encodes v to w, indented when indent is non-empty.
func Write(w io.Writer, v interface{}, indent string) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}
