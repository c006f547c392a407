// Package document loads and validates the JSON documents that drive a
// deployment: the root descriptor plus the default and per-environment
// parameter and tag maps, laid out under a caller-supplied root directory:
//
//	{root}/
//	  cloudformation.json     root descriptor (required)
//	  params/default.json     default parameters (required)
//	  params/{env}.json       environment parameters (optional)
//	  tags/default.json       default tags (absent means empty)
//	  tags/{env}.json         environment tags (optional)
//
// A missing environment document is the one non-fatal absence in the whole
// pipeline; every other malformation is a structured error naming the path
// and the violated constraint.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/fsys"
)

const (
	// RootDescriptorFile is the fixed filename of the root descriptor.
	RootDescriptorFile = "cloudformation.json"

	// ParamsDir holds parameter documents under the root.
	ParamsDir = "params"

	// TagsDir holds tag documents under the root.
	TagsDir = "tags"

	// DefaultDocument is the filename of the default map in each subfolder.
	DefaultDocument = "default.json"
)

// Descriptor field names as they appear in the root descriptor JSON.
const (
	fieldProject     = "project"
	fieldTemplate    = "template"
	fieldStackPrefix = "stack-prefix"
)

// Descriptor is the validated root descriptor.
type Descriptor struct {
	// Project is the project identity used as the stack name's first segment.
	Project string

	// Template is the template reference, passed through to the output
	// boundary untouched.
	Template string

	// StackPrefix is the naming prefix used as the stack name's second
	// segment.
	StackPrefix string
}

// Loader reads documents from a filesystem rooted at the deployment
// configuration directory.
type Loader struct {
	fs *fsys.FS
}

// NewLoader creates a loader over the given filesystem.
func NewLoader(fs *fsys.FS) *Loader {
	return &Loader{fs: fs}
}

// RootDescriptor loads and validates the root descriptor. Each of the three
// required fields must be present, non-null, and a non-empty string.
func (l *Loader) RootDescriptor() (*Descriptor, error) {
	obj, err := l.readObject(RootDescriptorFile)
	if err != nil {
		return nil, err
	}

	desc := &Descriptor{}
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{fieldProject, &desc.Project},
		{fieldTemplate, &desc.Template},
		{fieldStackPrefix, &desc.StackPrefix},
	} {
		s, err := requiredStringField(obj, field.name)
		if err != nil {
			return nil, err
		}
		*field.dst = s
	}
	return desc, nil
}

// DefaultParameters loads the required default parameter map. An empty
// object is valid.
func (l *Loader) DefaultParameters() (Map, error) {
	return l.LoadRequiredMap(ParamsDir, DefaultDocument)
}

// EnvironmentParameters loads the optional per-environment parameter map.
// The boolean reports presence; an absent file is not an error.
func (l *Loader) EnvironmentParameters(environment string) (Map, bool, error) {
	return l.LoadOptionalMap(ParamsDir, environment)
}

// DefaultTags loads the default tag map. Unlike default parameters, an
// absent tags/default.json is treated as an empty map.
func (l *Loader) DefaultTags() (Map, error) {
	m, present, err := l.load(path.Join(TagsDir, DefaultDocument), true)
	if err != nil {
		return nil, err
	}
	if !present {
		return Map{}, nil
	}
	return m, nil
}

// EnvironmentTags loads the optional per-environment tag map.
func (l *Loader) EnvironmentTags(environment string) (Map, bool, error) {
	return l.LoadOptionalMap(TagsDir, environment)
}

// LoadRequiredMap loads {subfolder}/{filename} as a JSON object. Absence is
// fatal; an empty object is valid.
func (l *Loader) LoadRequiredMap(subfolder, filename string) (Map, error) {
	m, _, err := l.load(path.Join(subfolder, filename), false)
	return m, err
}

// LoadOptionalMap loads {subfolder}/{environment}.json. An empty or
// whitespace-only environment name, or a missing file, yields absence
// without error. Any other failure is fatal: once an environment document
// exists it must be well-formed, or configuration mistakes would be silently
// masked.
func (l *Loader) LoadOptionalMap(subfolder, environment string) (Map, bool, error) {
	if strings.TrimSpace(environment) == "" {
		return nil, false, nil
	}
	return l.load(path.Join(subfolder, environment+".json"), true)
}

// load reads and parses a single document. When allowAbsent is true a
// missing file returns (nil, false, nil); otherwise absence is CodeNotFound.
func (l *Loader) load(rel string, allowAbsent bool) (Map, bool, error) {
	data, err := l.readDocument(rel, allowAbsent)
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	if err := checkObjectShape(rel, data); err != nil {
		return nil, false, err
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, errors.WrapWithContext(err, errors.CodeInvalidSyntax,
			"document is not valid JSON", map[string]any{"path": rel})
	}
	return m, true, nil
}

// readObject reads and parses a document as a generic JSON object, used for
// the root descriptor where values are inspected field by field.
func (l *Loader) readObject(rel string) (map[string]any, error) {
	data, err := l.readDocument(rel, false)
	if err != nil {
		return nil, err
	}

	if err := checkObjectShape(rel, data); err != nil {
		return nil, err
	}

	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidSyntax,
			"document is not valid JSON", map[string]any{"path": rel})
	}
	return obj, nil
}

// readDocument handles the filesystem part of the taxonomy: NotFound,
// NotAFile, and EmptyDocument. Returns nil data for an allowed absence.
func (l *Loader) readDocument(rel string, allowAbsent bool) ([]byte, error) {
	exists, err := l.fs.Exists(rel)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeUnknown,
			"cannot stat document", map[string]any{"path": rel})
	}
	if !exists {
		if allowAbsent {
			return nil, nil
		}
		return nil, errors.NewWithContext(errors.CodeNotFound,
			"required document not found", map[string]any{"path": rel})
	}

	isDir, err := l.fs.IsDir(rel)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeUnknown,
			"cannot stat document", map[string]any{"path": rel})
	}
	if isDir {
		return nil, errors.NewWithContext(errors.CodeNotAFile,
			"document path is a directory", map[string]any{"path": rel})
	}

	data, err := l.fs.ReadFile(rel)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeUnknown,
			"cannot read document", map[string]any{"path": rel})
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewWithContext(errors.CodeEmptyDocument,
			"document has no content", map[string]any{"path": rel})
	}
	return data, nil
}

// checkObjectShape verifies the document is syntactically valid JSON whose
// top-level value is an object, distinguishing InvalidSyntax from
// NotAnObject in the error taxonomy.
func checkObjectShape(rel string, data []byte) error {
	var probe any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&probe); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidSyntax,
			"document is not valid JSON", map[string]any{"path": rel})
	}
	if dec.More() {
		return errors.NewWithContext(errors.CodeInvalidSyntax,
			"document has trailing content after the JSON value",
			map[string]any{"path": rel})
	}
	if _, ok := probe.(map[string]any); !ok {
		return errors.NewWithContext(errors.CodeNotAnObject,
			fmt.Sprintf("document must be a JSON object, got %s", jsonTypeName(probe)),
			map[string]any{"path": rel})
	}
	return nil
}

// requiredStringField extracts a descriptor field that must be present,
// non-null, and a non-empty string.
func requiredStringField(obj map[string]any, name string) (string, error) {
	raw, ok := obj[name]
	if !ok || raw == nil {
		return "", errors.NewWithContext(errors.CodeMissingField,
			fmt.Sprintf("root descriptor is missing required field %q", name),
			map[string]any{"field": name})
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.NewWithContext(errors.CodeMissingField,
			fmt.Sprintf("root descriptor field %q must be a non-empty string", name),
			map[string]any{"field": name})
	}
	if s == "" {
		return "", errors.NewWithContext(errors.CodeMissingField,
			fmt.Sprintf("root descriptor field %q must not be empty", name),
			map[string]any{"field": name})
	}
	return s, nil
}

// jsonTypeName names a decoded JSON value's type for error messages.
func jsonTypeName(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}
