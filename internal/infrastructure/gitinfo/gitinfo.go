// Package gitinfo resolves the source revision of the code being deployed.
package gitinfo

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision identifies the commit checked out in the repository holding the
// code artifacts.
type Revision struct {
	Commit string
	Branch string
	Dirty  bool
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Commit) > 12 {
		return r.Commit[:12]
	}
	return r.Commit
}

// Resolve opens the repository containing path, searching parent
// directories. found is false when path is not inside a repository.
func Resolve(path string) (rev Revision, found bool, err error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, fmt.Errorf("gitinfo: open %q: %w", path, err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Repository without commits.
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, fmt.Errorf("gitinfo: resolve HEAD: %w", err)
	}

	rev = Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err == nil {
		if status, statusErr := wt.Status(); statusErr == nil {
			rev.Dirty = !status.IsClean()
		}
	}
	return rev, true, nil
}
