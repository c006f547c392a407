// Package gitcli resolves the current branch by invoking the git
// command-line tool. It is the production naming.BranchResolver: a bounded,
// synchronous external call whose failure modes (binary missing, timeout,
// not a repository, tool too old, generic failure) each produce a distinct
// diagnostic message.
package gitcli

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/executor"
)

// DefaultTimeout bounds each git invocation so a misbehaving tool cannot
// hang the whole run. A timeout is terminal; nothing here retries.
const DefaultTimeout = 5 * time.Second

// minVersion is the oldest git supporting `branch --show-current`.
var minVersion = semver.MustParse("2.22.0")

// versionPattern extracts the version number from `git version` output,
// e.g. "git version 2.39.2" or "git version 2.39.2.windows.1".
var versionPattern = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)

// Resolver shells out to git for branch resolution.
type Resolver struct {
	program string
	workdir string
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProgram overrides the git binary path. Used by tests to substitute a
// stub executable.
func WithProgram(program string) Option {
	return func(r *Resolver) { r.program = program }
}

// WithWorkdir sets the directory git runs in.
func WithWorkdir(dir string) Option {
	return func(r *Resolver) { r.workdir = dir }
}

// WithTimeout overrides the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// NewResolver creates a resolver with the default binary and timeout.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		program: "git",
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentBranch returns the symbolic name of the currently checked-out
// branch. The version gate runs first so an old tool is reported as such
// instead of as an unknown-option failure.
func (r *Resolver) CurrentBranch(ctx context.Context) (string, error) {
	if err := r.checkVersion(ctx); err != nil {
		return "", err
	}

	result, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", r.classify(err, result)
	}

	branch := strings.TrimSpace(result.Stdout)
	if branch == "" {
		// git prints nothing for a detached HEAD; surface the sentinel the
		// naming layer already understands.
		return "HEAD", nil
	}
	return branch, nil
}

// checkVersion verifies the installed git is new enough.
func (r *Resolver) checkVersion(ctx context.Context) error {
	result, err := r.run(ctx, "version")
	if err != nil {
		return r.classify(err, result)
	}

	m := versionPattern.FindStringSubmatch(result.Stdout)
	if m == nil {
		return errors.Newf(errors.CodeBranchResolution,
			"cannot parse git version from %q", strings.TrimSpace(result.Stdout))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return errors.Wrap(err, errors.CodeBranchResolution,
			fmt.Sprintf("cannot parse git version %q", m[1]))
	}
	if v.LessThan(minVersion) {
		return errors.NewWithContext(errors.CodeBranchResolution,
			fmt.Sprintf("git %s is too old, version %s or newer is required", v, minVersion),
			map[string]any{"installed": v.String(), "required": minVersion.String()})
	}
	return nil
}

func (r *Resolver) run(ctx context.Context, args ...string) (*executor.Result, error) {
	opts := []executor.Option{executor.WithTimeout(r.timeout)}
	if r.workdir != "" {
		opts = append(opts, executor.WithWorkingDir(r.workdir))
	}
	return executor.New(r.program, args...).Run(ctx, opts...)
}

// classify maps an execution failure to a diagnostic message. All outcomes
// share the branch-resolution error kind; only the message differs.
func (r *Resolver) classify(err error, result *executor.Result) error {
	switch {
	case executor.IsNotInstalled(err):
		return errors.Wrap(err, errors.CodeBranchResolution,
			"git is not installed or not on PATH")
	case executor.IsTimeout(err):
		return errors.Wrap(err, errors.CodeBranchResolution,
			fmt.Sprintf("git did not respond within %s", r.timeout))
	case result != nil && isNotARepository(result):
		return errors.Wrap(err, errors.CodeBranchResolution,
			"the working directory is not a git repository")
	default:
		detail := ""
		if result != nil {
			detail = strings.TrimSpace(result.Stderr)
		}
		if detail == "" {
			return errors.Wrap(err, errors.CodeBranchResolution, "git invocation failed")
		}
		return errors.Wrap(err, errors.CodeBranchResolution,
			fmt.Sprintf("git invocation failed: %s", detail))
	}
}

// isNotARepository recognizes git's not-a-repository failure (exit status
// 128 with the canonical message).
func isNotARepository(result *executor.Result) bool {
	return result.ExitCode == 128 &&
		strings.Contains(strings.ToLower(result.Stderr), "not a git repository")
}
