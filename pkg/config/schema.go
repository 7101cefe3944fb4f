// Package config provides the configuration resolution engine for
// Streamweave. A single flat property set supplied by the caller is coerced
// and validated against a schema at construction time, then resolved on
// demand into per-role client configurations through layered prefix
// overrides and the processing-guarantee cascade.
//
// The schema is data, not code: every recognized key is a ConfigEntry in a
// ConfigDef table carrying its semantic type, default, validator, and
// importance. Validation, defaults, and coercion are centralized in
// ConfigDef.Parse rather than scattered across per-field accessors.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/streamweave/streamweave/pkg/errors"
)

// ConfigType is the semantic type of a configuration value.
type ConfigType int

const (
	// TypeString is a plain string value
	TypeString ConfigType = iota
	// TypeInt is a 32-bit integer value
	TypeInt
	// TypeLong is a 64-bit integer value
	TypeLong
	// TypeBoolean is a boolean value
	TypeBoolean
	// TypeClass is the registered name of a pluggable implementation
	TypeClass
	// TypeList is a list of strings, comma-separated in raw form
	TypeList
	// TypePassword is a string whose value must not appear in logs
	TypePassword
)

// String returns the type name
func (t ConfigType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeBoolean:
		return "boolean"
	case TypeClass:
		return "class"
	case TypeList:
		return "list"
	case TypePassword:
		return "password"
	default:
		return "unknown"
	}
}

// Importance ranks how much attention a key deserves in documentation and
// diagnostics.
type Importance int

const (
	// ImportanceHigh marks keys most deployments must consider
	ImportanceHigh Importance = iota
	// ImportanceMedium marks keys with sensible defaults that are commonly tuned
	ImportanceMedium
	// ImportanceLow marks rarely-touched keys
	ImportanceLow
)

// Password wraps a secret string so it never leaks through formatting.
type Password string

// String implements fmt.Stringer
func (Password) String() string { return "[hidden]" }

// Validator checks a coerced value and returns the violated constraint as an
// error. The key is supplied for error construction.
type Validator func(key string, value interface{}) error

// ConfigEntry describes one recognized configuration key.
type ConfigEntry struct {
	Key        string
	Type       ConfigType
	Default    interface{}
	Required   bool // no default exists; absence is a construction error
	Validator  Validator
	Importance Importance
	Doc        string
	Deprecated bool
}

// ConfigDef is an immutable-after-build table of configuration entries keyed
// by name. Entries are defined once at process start; duplicate definitions
// are programming errors and panic.
type ConfigDef struct {
	entries map[string]ConfigEntry
	order   []string
}

// NewConfigDef creates an empty schema table
func NewConfigDef() *ConfigDef {
	return &ConfigDef{entries: make(map[string]ConfigEntry)}
}

// Define registers an entry. Defining the same key twice panics: schemas are
// static program structure, and a duplicate means two call sites disagree
// about a key's meaning.
func (d *ConfigDef) Define(e ConfigEntry) *ConfigDef {
	if _, exists := d.entries[e.Key]; exists {
		panic(fmt.Sprintf("config key %q defined twice", e.Key))
	}
	d.entries[e.Key] = e
	d.order = append(d.order, e.Key)
	return d
}

// Has reports whether key is part of the schema.
func (d *ConfigDef) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Keys returns the schema keys in definition order.
func (d *ConfigDef) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Entry returns the definition for key.
func (d *ConfigDef) Entry(key string) (ConfigEntry, bool) {
	e, ok := d.entries[key]
	return e, ok
}

// Parse coerces and validates every schema entry against the raw input.
// Present values are converted to their declared type and validated; absent
// values take the default, or fail when the entry is required. The first
// failure aborts: no partial result is ever returned. Keys in raw that the
// schema does not recognize are ignored here; the caller decides their fate
// (for streams configs they become opaque pass-through properties).
func (d *ConfigDef) Parse(raw map[string]interface{}) (map[string]interface{}, error) {
	parsed := make(map[string]interface{}, len(d.order))

	for _, key := range d.order {
		entry := d.entries[key]

		rawValue, present := raw[key]
		if !present {
			if entry.Required {
				return nil, errors.Newf(errors.ErrorTypeConfig,
					"Missing required configuration %q which has no default value", key)
			}
			parsed[key] = entry.Default
			continue
		}

		value, err := coerce(key, entry.Type, rawValue)
		if err != nil {
			return nil, err
		}

		if entry.Validator != nil {
			if err := entry.Validator(key, value); err != nil {
				return nil, err
			}
		}

		parsed[key] = value
	}

	return parsed, nil
}

// coerce converts a raw value to the declared semantic type.
func coerce(key string, t ConfigType, raw interface{}) (interface{}, error) {
	switch t {
	case TypeString, TypeClass:
		v, err := cast.ToStringE(raw)
		if err != nil {
			return nil, errors.NewConfigError(key, raw, "Expected value to be a string")
		}
		return v, nil

	case TypeInt:
		return coerceInt32(key, raw)

	case TypeLong:
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, errors.NewConfigError(key, raw, "String value could not be parsed as 64-bit integer")
		}
		return v, nil

	case TypeBoolean:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, errors.NewConfigError(key, raw, "Expected value to be either true or false")
		}
		return v, nil

	case TypeList:
		switch val := raw.(type) {
		case []string:
			out := make([]string, len(val))
			copy(out, val)
			return out, nil
		case string:
			if val == "" {
				return []string{}, nil
			}
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts, nil
		default:
			return nil, errors.NewConfigError(key, raw, "Expected a comma separated list")
		}

	case TypePassword:
		v, err := cast.ToStringE(raw)
		if err != nil {
			return nil, errors.NewConfigError(key, raw, "Expected value to be a string")
		}
		return Password(v), nil

	default:
		return nil, errors.Newf(errors.ErrorTypeInternal, "unknown config type %d for key %s", t, key)
	}
}

// coerceInt32 parses raw into an int, rejecting values outside the 32-bit
// range. Exposed to the guarantee cascade, which performs the same parse
// lazily for the producer inflight bound.
func coerceInt32(key string, raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return 0, errors.NewConfigError(key, raw, "String value could not be parsed as 32-bit integer")
		}
		return int(n), nil
	default:
		n, err := cast.ToInt64E(raw)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, errors.NewConfigError(key, raw, "Expected value to be a 32-bit integer")
		}
		return int(n), nil
	}
}

// Validators

// AtLeast returns a validator requiring value >= min. Works for int and
// int64 typed entries.
func AtLeast(min int64) Validator {
	return func(key string, value interface{}) error {
		n, err := cast.ToInt64E(value)
		if err != nil {
			return errors.NewConfigError(key, value, "Value must be a number")
		}
		if n < min {
			return errors.NewConfigError(key, value, fmt.Sprintf("Value must be at least %d", min))
		}
		return nil
	}
}

// Between returns a validator requiring min <= value <= max.
func Between(min, max int64) Validator {
	return func(key string, value interface{}) error {
		n, err := cast.ToInt64E(value)
		if err != nil {
			return errors.NewConfigError(key, value, "Value must be a number")
		}
		if n < min || n > max {
			return errors.NewConfigError(key, value,
				fmt.Sprintf("Value must be in the range [%d,...,%d]", min, max))
		}
		return nil
	}
}

// OneOf returns a validator requiring the string value to be one of the
// given alternatives.
func OneOf(valid ...string) Validator {
	return func(key string, value interface{}) error {
		s, err := cast.ToStringE(value)
		if err == nil {
			for _, v := range valid {
				if s == v {
					return nil
				}
			}
		}
		return errors.NewConfigError(key, value,
			"String must be one of: "+strings.Join(valid, ", "))
	}
}

// NonEmpty returns a validator rejecting empty strings.
func NonEmpty() Validator {
	return func(key string, value interface{}) error {
		s, err := cast.ToStringE(value)
		if err != nil || s == "" {
			return errors.NewConfigError(key, value, "String must be non-empty")
		}
		return nil
	}
}
