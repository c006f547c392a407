// Package naming derives the deployment stack name. In deployment mode the
// name is {project}-{stackPrefix}-{environmentTag}; in build mode the last
// segment is the sanitized current version-control branch, looked up through
// an injected BranchResolver so the logic is testable without a real git
// installation.
package naming

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
)

const (
	// MaxNameLength is the platform limit on stack names, enforced here so
	// an oversized name fails fast instead of downstream.
	MaxNameLength = 128

	// maxPartLength bounds each caller-supplied name part.
	maxPartLength = 50

	// detachedHead is the sentinel git reports when HEAD points at no
	// branch. Treated as unresolvable.
	detachedHead = "HEAD"
)

// namePartPattern is the charset allowed for project, stack prefix, and
// environment tag.
var namePartPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

var (
	invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9-]`)
	hyphenRuns       = regexp.MustCompile(`-{2,}`)
)

// Sanitize reduces an arbitrary string to the naming charset: every
// character outside [A-Za-z0-9-] becomes a hyphen, runs of hyphens collapse
// to one, leading and trailing hyphens are stripped, and the result is
// lowercased. A string of only invalid characters sanitizes to "".
//
// Sanitize is total and idempotent; the result always matches ^[a-z0-9-]*$.
func Sanitize(s string) string {
	s = invalidNameChars.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.ToLower(s)
}

// BranchResolver reports the symbolic name of the currently checked-out
// branch. Implementations live in gitcli (external git process) and gitrepo
// (in-process go-git).
type BranchResolver interface {
	CurrentBranch(ctx context.Context) (string, error)
}

// Input carries the fields the resolver composes a name from.
type Input struct {
	// Project is the descriptor's project identity.
	Project string

	// StackPrefix is the descriptor's naming prefix.
	StackPrefix string

	// BuildMode selects the branch-derived naming path.
	BuildMode bool

	// EnvironmentTag is the target environment. Required when BuildMode is
	// false; ignored otherwise.
	EnvironmentTag string
}

// Resolver computes stack names.
type Resolver struct {
	branches BranchResolver
}

// NewResolver creates a resolver. The branch resolver may be nil for
// deployment-mode-only use; resolving in build mode without one is an
// internal error.
func NewResolver(branches BranchResolver) *Resolver {
	return &Resolver{branches: branches}
}

// Resolve computes the stack name for the given input. Both paths enforce
// the MaxNameLength cap; nothing is ever silently truncated.
func (r *Resolver) Resolve(ctx context.Context, in Input) (string, error) {
	if err := validatePart("project", in.Project); err != nil {
		return "", err
	}
	if err := validatePart("stack prefix", in.StackPrefix); err != nil {
		return "", err
	}

	var suffix string
	if in.BuildMode {
		s, err := r.branchSuffix(ctx)
		if err != nil {
			return "", err
		}
		suffix = s
	} else {
		if err := validatePart("environment tag", in.EnvironmentTag); err != nil {
			return "", err
		}
		suffix = in.EnvironmentTag
	}

	name := fmt.Sprintf("%s-%s-%s", in.Project, in.StackPrefix, suffix)
	if err := CheckLength(name); err != nil {
		return "", err
	}
	return name, nil
}

// branchSuffix resolves and sanitizes the current branch name.
func (r *Resolver) branchSuffix(ctx context.Context) (string, error) {
	if r.branches == nil {
		return "", errors.New(errors.CodeInternal,
			"build mode requires a branch resolver")
	}

	branch, err := r.branches.CurrentBranch(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeBranchResolution,
			"cannot resolve current branch")
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return "", errors.New(errors.CodeBranchResolution,
			"branch lookup returned an empty value")
	}
	if branch == detachedHead {
		return "", errors.New(errors.CodeBranchResolution,
			"HEAD is detached; checkout a branch to use build mode")
	}

	suffix := Sanitize(branch)
	if suffix == "" {
		return "", errors.NewWithContext(errors.CodeSanitizationEmpty,
			fmt.Sprintf("branch name %q sanitizes to an empty string", branch),
			map[string]any{"branch": branch})
	}
	return suffix, nil
}

// CheckLength verifies a composed name fits the platform limit. Exposed so
// the orchestrator can re-check after appending a correlation id.
func CheckLength(name string) error {
	if len(name) > MaxNameLength {
		return errors.NewWithContext(errors.CodeNameTooLong,
			fmt.Sprintf("stack name %q is %d characters, limit is %d",
				name, len(name), MaxNameLength),
			map[string]any{"limit": MaxNameLength})
	}
	return nil
}

// ValidateEnvironmentTag checks an environment tag against the naming
// charset and length bound. The orchestrator calls this before any file I/O
// so input mistakes surface first.
func ValidateEnvironmentTag(tag string) error {
	return validatePart("environment tag", tag)
}

// validatePart checks a caller-supplied name part against the naming charset
// and length bound.
func validatePart(what, value string) error {
	if value == "" {
		return errors.Newf(errors.CodeInvalidInput, "%s must not be empty", what)
	}
	if len(value) > maxPartLength {
		return errors.NewWithContext(errors.CodeInvalidInput,
			fmt.Sprintf("%s %q exceeds %d characters", what, value, maxPartLength),
			map[string]any{"limit": maxPartLength})
	}
	if !namePartPattern.MatchString(value) {
		return errors.Newf(errors.CodeInvalidInput,
			"%s %q must match %s", what, value, namePartPattern)
	}
	return nil
}
