// Package serde defines the pluggable serializer/deserializer and
// timestamp-extractor contracts used by the streams configuration. Concrete
// implementations are looked up by name through a process-wide registry,
// mirroring how connector implementations are registered elsewhere in the
// ecosystem: a configuration value names an implementation, the registry
// produces it, and the configuration hook runs before the instance is
// handed out. Configuration is all-or-nothing; a failing hook never yields
// a half-usable instance.
package serde

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/streamweave/streamweave/pkg/errors"
)

// Serializer converts typed values into wire bytes for a topic.
type Serializer interface {
	Serialize(topic string, value interface{}) ([]byte, error)
}

// Deserializer converts wire bytes back into typed values.
type Deserializer interface {
	Deserialize(topic string, data []byte) (interface{}, error)
}

// Serde bundles a serializer/deserializer pair with a configuration hook.
// Configure receives the full parsed streams configuration plus the raw
// pass-through properties, and isKey distinguishes key from value encoding
// settings. Implementations must either configure completely or return an
// error and remain unused.
type Serde interface {
	Configure(props map[string]interface{}, isKey bool) error
	Serializer() Serializer
	Deserializer() Deserializer
}

// BytesSerde passes byte slices through unchanged. It is the default serde
// when none is configured.
type BytesSerde struct{}

// Configure implements Serde. BytesSerde has nothing to configure.
func (BytesSerde) Configure(map[string]interface{}, bool) error { return nil }

// Serializer implements Serde
func (BytesSerde) Serializer() Serializer { return bytesSerializer{} }

// Deserializer implements Serde
func (BytesSerde) Deserializer() Deserializer { return bytesDeserializer{} }

type bytesSerializer struct{}

func (bytesSerializer) Serialize(_ string, value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeSerde, "bytes serializer expects []byte, got %T", value)
	}
	return b, nil
}

type bytesDeserializer struct{}

func (bytesDeserializer) Deserialize(_ string, data []byte) (interface{}, error) {
	return data, nil
}

// StringSerde encodes strings. The character encoding is configurable through
// the key.serializer.encoding / value.serializer.encoding properties (and
// their deserializer counterparts); only UTF-8 is supported.
type StringSerde struct {
	encoding string
}

// Configure implements Serde, resolving the direction-specific encoding
// properties. An unsupported encoding fails the whole configuration.
func (s *StringSerde) Configure(props map[string]interface{}, isKey bool) error {
	direction := "value"
	if isKey {
		direction = "key"
	}

	enc := "UTF8"
	for _, prop := range []string{
		direction + ".serializer.encoding",
		direction + ".deserializer.encoding",
		"serializer.encoding",
	} {
		if v, ok := props[prop]; ok {
			enc = fmt.Sprintf("%v", v)
			break
		}
	}

	switch strings.ToUpper(strings.ReplaceAll(enc, "-", "")) {
	case "UTF8":
		s.encoding = "UTF-8"
	default:
		return errors.Newf(errors.ErrorTypeSerde, "unsupported string encoding %q", enc)
	}
	return nil
}

// Serializer implements Serde
func (s *StringSerde) Serializer() Serializer { return stringSerializer{} }

// Deserializer implements Serde
func (s *StringSerde) Deserializer() Deserializer { return stringDeserializer{} }

type stringSerializer struct{}

func (stringSerializer) Serialize(_ string, value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	str, ok := value.(string)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeSerde, "string serializer expects string, got %T", value)
	}
	return []byte(str), nil
}

type stringDeserializer struct{}

func (stringDeserializer) Deserialize(_ string, data []byte) (interface{}, error) {
	if data == nil {
		return nil, nil
	}
	return string(data), nil
}

// Int64Serde encodes int64 values as 8 big-endian bytes.
type Int64Serde struct{}

// Configure implements Serde
func (Int64Serde) Configure(map[string]interface{}, bool) error { return nil }

// Serializer implements Serde
func (Int64Serde) Serializer() Serializer { return int64Serializer{} }

// Deserializer implements Serde
func (Int64Serde) Deserializer() Deserializer { return int64Deserializer{} }

type int64Serializer struct{}

func (int64Serializer) Serialize(_ string, value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	n, ok := value.(int64)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeSerde, "int64 serializer expects int64, got %T", value)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf, nil
}

type int64Deserializer struct{}

func (int64Deserializer) Deserialize(_ string, data []byte) (interface{}, error) {
	if data == nil {
		return nil, nil
	}
	if len(data) != 8 {
		return nil, errors.Newf(errors.ErrorTypeSerde, "int64 deserializer expects 8 bytes, got %d", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}
