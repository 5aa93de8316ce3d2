// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/kvnxiao/sheldon/internal/config"
)

// gitFetcher materializes git sources via go-git.
type gitFetcher struct {
	// auth is the authentication method for remote operations; nil works
	// for public repositories.
	auth transport.AuthMethod
}

func newGitFetcher() *gitFetcher {
	f := &gitFetcher{}
	f.setupAuth()
	return f
}

// ensure clones or updates the repository at dir so that the worktree is
// checked out at ref. Movable references (branch/default) are fetched and
// re-checked-out; pinned references (tag/rev) already satisfied by the
// existing checkout are left untouched, avoiding redundant network calls.
// force re-fetches pinned references too.
func (f *gitFetcher) ensure(ctx context.Context, gitURL string, ref config.GitReference, dir string, force bool) error {
	auth := f.authFor(gitURL)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		repo, err = f.clone(ctx, gitURL, dir, auth)
		if err != nil {
			return fmt.Errorf("failed to clone %s: %w", gitURL, err)
		}
		return f.checkout(repo, ref)
	}

	if !ref.Movable() && !force && f.satisfied(repo, ref) {
		return nil
	}

	if err := f.fetch(ctx, repo, auth); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", gitURL, err)
	}
	return f.checkout(repo, ref)
}

// satisfied reports whether the existing checkout already sits at the pinned
// reference, using only local repository state.
func (f *gitFetcher) satisfied(repo *git.Repository, ref config.GitReference) bool {
	head, err := repo.Head()
	if err != nil {
		return false
	}
	switch ref.Kind {
	case config.RefRev:
		return strings.HasPrefix(head.Hash().String(), ref.Value)
	case config.RefTag:
		hash, err := f.resolveTag(repo, ref.Value)
		return err == nil && head.Hash() == hash
	default:
		return false
	}
}

// clone clones the repository to dir, creating parent directories as needed.
// A failed partial clone is removed so the next run starts clean.
func (f *gitFetcher) clone(ctx context.Context, gitURL, dir string, auth transport.AuthMethod) (*git.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  gitURL,
		Auth: auth,
		Tags: git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(dir) //nolint:errcheck // Best-effort cleanup of a partial clone
		return nil, err
	}
	return repo, nil
}

// fetch fetches updates and tags from origin.
func (f *gitFetcher) fetch(ctx context.Context, repo *git.Repository, auth transport.AuthMethod) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		Auth:  auth,
		Tags:  git.AllTags,
		Force: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// checkout moves the worktree to the commit identified by ref.
func (f *gitFetcher) checkout(repo *git.Repository, ref config.GitReference) error {
	hash, err := f.resolve(repo, ref)
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", ref, err)
	}
	return nil
}

// resolve maps a reference to a commit hash using local repository state
// (all remote refs and tags have been fetched by this point).
func (f *gitFetcher) resolve(repo *git.Repository, ref config.GitReference) (plumbing.Hash, error) {
	switch ref.Kind {
	case config.RefRev:
		hash, err := repo.ResolveRevision(plumbing.Revision(ref.Value))
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("revision %q not found: %w", ref.Value, err)
		}
		return *hash, nil
	case config.RefTag:
		return f.resolveTag(repo, ref.Value)
	case config.RefBranch:
		r, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, ref.Value), true)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("branch %q not found: %w", ref.Value, err)
		}
		return r.Hash(), nil
	default:
		return f.resolveDefault(repo)
	}
}

// resolveDefault resolves the default-branch reference: the remote HEAD when
// the remote advertises one, otherwise the branch the clone checked out.
func (f *gitFetcher) resolveDefault(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		r, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, head.Name().Short()), true)
		if err == nil {
			return r.Hash(), nil
		}
	}
	return head.Hash(), nil
}

// resolveTag finds a tag by name, dereferencing annotated tags to the commit
// they point at.
func (f *gitFetcher) resolveTag(repo *git.Repository, tag string) (plumbing.Hash, error) {
	ref, err := repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("tag %q not found: %w", tag, err)
	}
	if tagObj, err := repo.TagObject(ref.Hash()); err == nil {
		return tagObj.Target, nil
	}
	return ref.Hash(), nil
}

// authFor returns the auth method for a URL. Local filesystem repositories
// never need credentials.
func (f *gitFetcher) authFor(gitURL string) transport.AuthMethod {
	if strings.Contains(gitURL, "://") || strings.Contains(gitURL, "@") {
		return f.auth
	}
	return nil
}

// setupAuth configures authentication from available credentials: SSH keys
// first, then token environment variables. No credentials means anonymous
// access, which works for public repositories.
func (f *gitFetcher) setupAuth() {
	if sshAuth := trySSHAuth(); sshAuth != nil {
		f.auth = sshAuth
		return
	}
	if httpAuth := tryHTTPAuth(); httpAuth != nil {
		f.auth = httpAuth
	}
}

// trySSHAuth attempts to load an SSH key from the common locations.
func trySSHAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	keyPaths := []string{
		filepath.Join(homeDir, ".ssh", "id_ed25519"),
		filepath.Join(homeDir, ".ssh", "id_rsa"),
		filepath.Join(homeDir, ".ssh", "id_ecdsa"),
	}
	for _, keyPath := range keyPaths {
		if _, err := os.Stat(keyPath); err == nil {
			auth, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
			if err == nil {
				return auth
			}
		}
	}
	return nil
}

// tryHTTPAuth attempts token authentication from environment variables.
func tryHTTPAuth() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}
