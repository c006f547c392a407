package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the JSON shapes a document value can take.
type Kind int

const (
	// KindString is a JSON string.
	KindString Kind = iota
	// KindNumber is a JSON number.
	KindNumber
	// KindBool is a JSON boolean.
	KindBool
	// KindNull is a JSON null. Loading preserves nulls so the merge engine
	// can reject them by name instead of the loader guessing intent.
	KindNull
	// KindStructured is a JSON object or array, carried as an opaque
	// serialized blob since the wire format has no nesting.
	KindStructured
)

// Value is a tagged union over the JSON value shapes that may appear in a
// parameter or tag document. Stringification is total over all kinds except
// null, which is a validation error upstream.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	raw  json.RawMessage
}

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number constructs a number value from its JSON literal.
func Number(literal string) Value { return Value{kind: KindNumber, num: json.Number(literal)} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null constructs a null value.
func Null() Value { return Value{kind: KindNull} }

// Structured constructs an object/array value from raw JSON.
func Structured(raw json.RawMessage) Value { return Value{kind: KindStructured, raw: raw} }

// Kind returns the value's discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is a JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Render converts the value to its wire string: scalars by direct string
// conversion, structured values by compact JSON serialization. Rendering a
// null is an internal error; callers validate nulls away first.
func (v Value) Render() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber:
		return v.num.String(), nil
	case KindBool:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case KindStructured:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v.raw); err != nil {
			return "", fmt.Errorf("compact structured value: %w", err)
		}
		return buf.String(), nil
	case KindNull:
		return "", fmt.Errorf("cannot render null value")
	default:
		return "", fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes any JSON value into the union.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty value token")
	}

	switch trimmed[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '{', '[':
		raw := make(json.RawMessage, len(trimmed))
		copy(raw, trimmed)
		*v = Structured(raw)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*v = Value{kind: KindNumber, num: n}
		return nil
	}
}

// MarshalJSON re-encodes the union as the JSON it was decoded from.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNull:
		return []byte("null"), nil
	case KindStructured:
		return v.raw, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// Map is a flat document body: key to JSON value. Maps are never mutated
// after load; the merge engine always produces a fresh one.
type Map map[string]Value

// Clone returns a shallow copy of the map. Values are immutable so a shallow
// copy is a full copy for callers.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
