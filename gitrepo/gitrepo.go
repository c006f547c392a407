// Package gitrepo resolves the current branch by reading the repository
// in-process with go-git. It needs no git installation, which makes it the
// resolver of choice for containerized runners without the CLI; gitcli
// remains the default because its diagnostics mirror the tool operators see.
package gitrepo

import (
	"context"

	"github.com/go-git/go-git/v5"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
)

// Resolver reads branch state from a repository on disk.
type Resolver struct {
	path string
}

// NewResolver creates a resolver for the repository at or above path. The
// .git directory is discovered upward the way the git CLI does.
func NewResolver(path string) *Resolver {
	return &Resolver{path: path}
}

// CurrentBranch returns the symbolic name of the checked-out branch, or the
// "HEAD" sentinel when the repository is in detached-HEAD state.
func (r *Resolver) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.CodeBranchResolution, "context cancelled")
	}

	repo, err := git.PlainOpenWithOptions(r.path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", errors.Wrap(err, errors.CodeBranchResolution,
				"the working directory is not a git repository")
		}
		return "", errors.Wrap(err, errors.CodeBranchResolution,
			"cannot open git repository")
	}

	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeBranchResolution,
			"cannot read HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}
