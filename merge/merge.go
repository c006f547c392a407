// Package merge implements the override merge of parameter and tag maps and
// their rendering into the flat wire format the deployment consumer expects.
// Validation runs at both boundaries: inputs are checked before merging and
// the merged result is checked again when rendered. Every violation is fatal
// and names the offending key, the kind, and the limit.
package merge

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/document"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
)

// parameterKeyPattern is the identifier shape the deployment platform
// requires of parameter names. Tag keys are free-form metadata and only
// bounded in length.
var parameterKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Kind selects the limit set and wire field names for a map.
type Kind int

const (
	// Parameter maps feed deploy-time template parameters.
	Parameter Kind = iota
	// Tag maps feed deployment metadata tags.
	Tag
)

// String returns the kind's name for error messages.
func (k Kind) String() string {
	if k == Tag {
		return "tag"
	}
	return "parameter"
}

// limits returns (maxKeys, maxKeyLen, maxValueLen) for the kind.
func (k Kind) limits() (int, int, int) {
	if k == Tag {
		return 50, 128, 256
	}
	return 200, 255, 4096
}

// Record is one rendered wire entry.
type Record struct {
	Name  string
	Value string
}

// Merge returns a new map holding base's entries with any key present in
// override replaced by override's value, plus keys unique to override. A nil
// override means "no environment document" and yields a copy of base.
// Override always wins, including when its value is falsy (0, false, empty
// string): the copy is per-key, never presence-sensitive.
func Merge(base, override document.Map, kind Kind) (document.Map, error) {
	if base == nil {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"%s base map must not be nil", kind)
	}
	if err := Validate(base, kind); err != nil {
		return nil, err
	}
	if override != nil {
		if err := Validate(override, kind); err != nil {
			return nil, err
		}
	}

	out := base.Clone()
	for k, v := range override {
		out[k] = v
	}
	return out, nil
}

// Validate checks a map against the kind's cardinality and key/value rules:
// key count within the kind's limit, every key a non-empty string within the
// kind's length bound (and, for parameters, a valid identifier), and no null
// values.
func Validate(m document.Map, kind Kind) error {
	maxKeys, maxKeyLen, _ := kind.limits()

	if len(m) > maxKeys {
		return errors.NewWithContext(errors.CodeLimitExceeded,
			fmt.Sprintf("%s map has %d keys, limit is %d", kind, len(m), maxKeys),
			map[string]any{"kind": kind.String(), "limit": maxKeys})
	}

	for _, key := range sortedKeys(m) {
		if key == "" {
			return errors.Newf(errors.CodeInvalidInput,
				"%s map contains an empty key", kind)
		}
		if len(key) > maxKeyLen {
			return errors.NewWithContext(errors.CodeLimitExceeded,
				fmt.Sprintf("%s key %q exceeds %d characters", kind, key, maxKeyLen),
				map[string]any{"key": key, "kind": kind.String(), "limit": maxKeyLen})
		}
		if kind == Parameter && !parameterKeyPattern.MatchString(key) {
			return errors.NewWithContext(errors.CodeInvalidInput,
				fmt.Sprintf("parameter key %q must match %s", key, parameterKeyPattern),
				map[string]any{"key": key})
		}
		if m[key].IsNull() {
			return errors.NewWithContext(errors.CodeNullValue,
				fmt.Sprintf("%s key %q has a null value", kind, key),
				map[string]any{"key": key, "kind": kind.String()})
		}
	}
	return nil
}

// ToWireFormat renders a merged map to wire records: scalars by direct
// string conversion, structured values as compact JSON. Records come back in
// sorted key order so output is deterministic across runs. The map is
// re-validated, and any rendered value over the kind's length cap is fatal.
func ToWireFormat(m document.Map, kind Kind) ([]Record, error) {
	if err := Validate(m, kind); err != nil {
		return nil, err
	}

	_, _, maxValueLen := kind.limits()
	records := make([]Record, 0, len(m))
	for _, key := range sortedKeys(m) {
		rendered, err := m[key].Render()
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput,
				fmt.Sprintf("cannot render %s %q", kind, key),
				map[string]any{"key": key, "kind": kind.String()})
		}
		if len(rendered) > maxValueLen {
			return nil, errors.NewWithContext(errors.CodeLimitExceeded,
				fmt.Sprintf("%s %q value is %d characters, limit is %d",
					kind, key, len(rendered), maxValueLen),
				map[string]any{"key": key, "kind": kind.String(), "limit": maxValueLen})
		}
		records = append(records, Record{Name: key, Value: rendered})
	}
	return records, nil
}

func sortedKeys(m document.Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
