// Package errors provides the structured error handling used across the
// action. It extends Go's standard error handling with string error codes,
// context preservation, and message formatting so that every failure names
// the violated constraint and the concrete value or path involved.
package errors

// ErrorCode identifies a specific failure condition in the parameter
// pipeline. Codes are string-based for debuggability and natural JSON
// serialization in workflow logs.
type ErrorCode string

const (
	// Document errors.

	// CodeNotFound indicates a required document does not exist at its path.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeNotAFile indicates a document path resolves to a directory.
	CodeNotAFile ErrorCode = "NOT_A_FILE"

	// CodeEmptyDocument indicates a document has no non-whitespace content.
	CodeEmptyDocument ErrorCode = "EMPTY_DOCUMENT"

	// CodeInvalidSyntax indicates a document is not valid JSON.
	CodeInvalidSyntax ErrorCode = "INVALID_SYNTAX"

	// CodeNotAnObject indicates a document parsed to an array or scalar
	// where a JSON object was required.
	CodeNotAnObject ErrorCode = "NOT_AN_OBJECT"

	// CodeMissingField indicates a required descriptor field is absent,
	// null, or an empty string.
	CodeMissingField ErrorCode = "MISSING_FIELD"

	// Merge and validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeLimitExceeded indicates a key count, key length, value length,
	// or name length limit was violated.
	CodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"

	// CodeNullValue indicates a map entry carries a JSON null, which is
	// rejected rather than coerced.
	CodeNullValue ErrorCode = "NULL_VALUE"

	// Naming errors.

	// CodeBranchResolution indicates the current branch could not be
	// determined. The message carries the diagnostic detail (tool missing,
	// timeout, not a repository, tool too old, detached HEAD, or a generic
	// failure).
	CodeBranchResolution ErrorCode = "BRANCH_RESOLUTION_FAILED"

	// CodeSanitizationEmpty indicates branch-name sanitization produced an
	// empty string.
	CodeSanitizationEmpty ErrorCode = "SANITIZATION_EMPTY"

	// CodeNameTooLong indicates the resolved stack name exceeds the
	// platform limit.
	CodeNameTooLong ErrorCode = "NAME_TOO_LONG"

	// Generator errors.

	// CodeInvalidLength indicates a correlation id length outside the
	// supported range was requested.
	CodeInvalidLength ErrorCode = "INVALID_LENGTH"

	// System errors.

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeInternal indicates an internal self-check failed.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)
